// Package prng implements the MT19937 Mersenne Twister. The server
// draws prize seeds from it and ships them to clients, which run the
// same generator to place prizes identically, so the sequence must
// match the reference algorithm bit for bit.
package prng

const (
	n = 624
	m = 397

	matrixA   = 0x9908b0df
	upperMask = 0x80000000
	lowerMask = 0x7fffffff
)

type MersenneTwister struct {
	state [n]uint32
	index int
}

// NewMersenneTwister returns a generator seeded with the given value.
func NewMersenneTwister(seed uint32) *MersenneTwister {
	mt := &MersenneTwister{}
	mt.seed(seed)
	return mt
}

func (mt *MersenneTwister) seed(seed uint32) {
	mt.state[0] = seed
	for i := 1; i < n; i++ {
		mt.state[i] = 1812433253*(mt.state[i-1]^(mt.state[i-1]>>30)) + uint32(i)
	}
	mt.index = n
}

// Uint32 returns the next 32-bit value in the sequence
// (genrand_int32 in the reference implementation).
func (mt *MersenneTwister) Uint32() uint32 {
	if mt.index >= n {
		mt.twist()
	}

	y := mt.state[mt.index]
	mt.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

func (mt *MersenneTwister) twist() {
	for i := 0; i < n; i++ {
		y := (mt.state[i] & upperMask) | (mt.state[(i+1)%n] & lowerMask)
		next := mt.state[(i+m)%n] ^ (y >> 1)
		if y&1 != 0 {
			next ^= matrixA
		}
		mt.state[i] = next
	}
	mt.index = 0
}

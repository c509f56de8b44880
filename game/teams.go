package game

import (
	"fmt"

	"github.com/quasarhq/quasar-backend/prng"
)

// MaxTeamLimit bounds the team-id space for every allocator.
const MaxTeamLimit = 10000

// TeamAllocator decides which team the next player joins, given the
// current roster.
type TeamAllocator interface {
	PlaceOnTeam(players *PlayerList) int
}

func checkMaxTeams(maxTeams int) {
	if maxTeams <= 1 || maxTeams > MaxTeamLimit {
		panic(fmt.Sprintf("game: maxTeams must be in (1, %d], got %d", MaxTeamLimit, maxTeams))
	}
}

func occupancyHistogram(maxTeams int, players *PlayerList) []int {
	histogram := make([]int, maxTeams)
	players.ForEach(func(p *Player) {
		if p.Team >= 0 && p.Team < maxTeams {
			histogram[p.Team]++
		}
	})
	return histogram
}

// FreeForAll round-robins through the unbounded team-id space with no
// balancing, so every player lands on their own team.
type FreeForAll struct {
	nextTeam int
}

func NewFreeForAll() *FreeForAll {
	return &FreeForAll{}
}

func (a *FreeForAll) PlaceOnTeam(players *PlayerList) int {
	team := a.nextTeam
	a.nextTeam = (a.nextTeam + 1) % MaxTeamLimit
	return team
}

// Random picks a uniform team from the shared generator.
type Random struct {
	maxTeams int
	rng      *prng.MersenneTwister
}

func NewRandom(maxTeams int, rng *prng.MersenneTwister) *Random {
	checkMaxTeams(maxTeams)
	return &Random{maxTeams: maxTeams, rng: rng}
}

func (a *Random) PlaceOnTeam(players *PlayerList) int {
	return int(a.rng.Uint32() % uint32(a.maxTeams))
}

// UniformBalanced places the player on the least-occupied team, ties
// broken by lowest team id. Production default.
type UniformBalanced struct {
	maxTeams int
}

func NewUniformBalanced(maxTeams int) *UniformBalanced {
	checkMaxTeams(maxTeams)
	return &UniformBalanced{maxTeams: maxTeams}
}

func (a *UniformBalanced) PlaceOnTeam(players *PlayerList) int {
	histogram := occupancyHistogram(a.maxTeams, players)

	smallest := 0
	for team := 1; team < a.maxTeams; team++ {
		if histogram[team] < histogram[smallest] {
			smallest = team
		}
	}
	return smallest
}

// FlexibleBalanced opens and closes team slots based on a per-team
// capacity. Placement goes to the least-occupied open team; a new team
// opens when every open team is at capacity, and the smallest open
// team closes (for future placements) once the remaining open teams
// hold enough empty slots to absorb a full team.
type FlexibleBalanced struct {
	capacity int
	maxTeams int
	open     []bool
}

func NewFlexibleBalanced(capacity, maxTeams int) *FlexibleBalanced {
	if capacity <= 0 {
		panic("game: each team must have a positive capacity")
	}
	checkMaxTeams(maxTeams)

	a := &FlexibleBalanced{
		capacity: capacity,
		maxTeams: maxTeams,
		open:     make([]bool, maxTeams),
	}
	a.open[0] = true
	return a
}

func (a *FlexibleBalanced) PlaceOnTeam(players *PlayerList) int {
	histogram := occupancyHistogram(a.maxTeams, players)

	emptySlots := 0
	smallestOpen := -1
	for team := 0; team < a.maxTeams; team++ {
		if !a.open[team] {
			continue
		}
		if free := a.capacity - histogram[team]; free > 0 {
			emptySlots += free
		}
		if smallestOpen == -1 || histogram[team] < histogram[smallestOpen] {
			smallestOpen = team
		}
	}

	// All open teams are full: open the lowest-id closed team.
	if emptySlots == 0 {
		for team := 0; team < a.maxTeams; team++ {
			if !a.open[team] {
				a.open[team] = true
				return team
			}
		}
		// Every team is open and full; overflow onto the smallest.
		return smallestOpen
	}

	// Close the smallest open team when the other open teams hold a
	// full team's worth of empty slots. Existing members keep their
	// team; only future placements are redirected.
	smallestFree := a.capacity - histogram[smallestOpen]
	if smallestFree < 0 {
		smallestFree = 0
	}
	if emptySlots-smallestFree >= a.capacity && a.openCount() > 1 {
		a.open[smallestOpen] = false
		return a.PlaceOnTeam(players)
	}

	return smallestOpen
}

func (a *FlexibleBalanced) openCount() int {
	count := 0
	for _, open := range a.open {
		if open {
			count++
		}
	}
	return count
}

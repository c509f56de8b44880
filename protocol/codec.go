package protocol

import (
	"encoding/json"
	"errors"
)

// ErrMalformedPacket reports an inbound frame that is not a JSON array
// starting with a numeric packet type tag. The transport closes the
// connection when it sees this.
var ErrMalformedPacket = errors.New("protocol: malformed packet")

// Packet is a decoded client-to-server frame: the type tag plus the
// remaining positional arguments.
type Packet struct {
	Type C2SPacketType
	Args []interface{}
}

func DecodePacket(data []byte) (Packet, error) {
	var frame []interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		return Packet{}, ErrMalformedPacket
	}
	if len(frame) == 0 {
		return Packet{}, ErrMalformedPacket
	}
	tag, ok := frame[0].(float64)
	if !ok {
		return Packet{}, ErrMalformedPacket
	}
	return Packet{Type: C2SPacketType(tag), Args: frame[1:]}, nil
}

func EncodePacket(packet []interface{}) ([]byte, error) {
	return json.Marshal(packet)
}

// Positional argument accessors. Arguments arrive as generic JSON
// values; a missing or mistyped argument yields the zero value, which
// mirrors how the packets behave on the client side.

func StringArg(args []interface{}, i int) string {
	if i < len(args) {
		if s, ok := args[i].(string); ok {
			return s
		}
	}
	return ""
}

func FloatArg(args []interface{}, i int) float64 {
	if i < len(args) {
		if f, ok := args[i].(float64); ok {
			return f
		}
	}
	return 0
}

func IntArg(args []interface{}, i int) int {
	return int(FloatArg(args, i))
}

// Uint32Arg truncates to 32 bits the way the JS client's ">>> 0" does.
func Uint32Arg(args []interface{}, i int) uint32 {
	return uint32(int64(FloatArg(args, i)))
}

func BoolArg(args []interface{}, i int) bool {
	if i < len(args) {
		if b, ok := args[i].(bool); ok {
			return b
		}
	}
	return false
}

func ObjectArg(args []interface{}, i int) map[string]interface{} {
	if i < len(args) {
		if m, ok := args[i].(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

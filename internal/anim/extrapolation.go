package anim

import (
	"fmt"
	"strings"
)

// Extrapolation is the policy for sampling a track outside its key range.
type Extrapolation uint8

const (
	// ExtrapolateNone yields no value; the caller falls back to its default.
	ExtrapolateNone Extrapolation = iota
	// ExtrapolateNearest clamps to the first or last key.
	ExtrapolateNearest
	// ExtrapolateLinear continues the slope of the outermost keys. Not supported.
	ExtrapolateLinear
	// ExtrapolateRepeat loops the key range. Only valid after the last key.
	ExtrapolateRepeat
)

func (e Extrapolation) String() string {
	switch e {
	case ExtrapolateNone:
		return "none"
	case ExtrapolateNearest:
		return "nearest"
	case ExtrapolateLinear:
		return "linear"
	case ExtrapolateRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("extrapolation(%d)", uint8(e))
	}
}

// ParseExtrapolation parses the lower-case policy name. The empty string is
// ExtrapolateNone.
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ExtrapolateNone, nil
	case "nearest", "clamp":
		return ExtrapolateNearest, nil
	case "linear":
		return ExtrapolateLinear, nil
	case "repeat", "loop":
		return ExtrapolateRepeat, nil
	default:
		return ExtrapolateNone, fmt.Errorf("unknown extrapolation %q", s)
	}
}

// ABOUTME: Device orientation values and parsing for face-down detection.
// ABOUTME: Accepts the short textual forms emitted by sensor bridges.
package motion

import (
	"fmt"
	"strings"
)

// Orientation is the face-down signal observed from a motion sensor.
type Orientation int

const (
	FaceUp Orientation = iota
	FaceDown
)

func (o Orientation) String() string {
	if o == FaceDown {
		return "face-down"
	}
	return "face-up"
}

// IsFaceDown reports whether the device is lying screen down.
func (o Orientation) IsFaceDown() bool {
	return o == FaceDown
}

// FromBool converts a face-down flag into an Orientation.
func FromBool(faceDown bool) Orientation {
	if faceDown {
		return FaceDown
	}
	return FaceUp
}

// Parse reads an orientation from text such as "down", "up", "1" or "0".
func Parse(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down", "d", "face-down", "facedown", "1", "true":
		return FaceDown, nil
	case "up", "u", "face-up", "faceup", "0", "false":
		return FaceUp, nil
	default:
		return FaceUp, fmt.Errorf("unknown orientation: %q", s)
	}
}

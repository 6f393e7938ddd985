package model

import "fmt"

// Rotation identifies one of the three daily on-call shifts.
type Rotation int

const (
	RotationAM Rotation = iota
	RotationCore
	RotationPM
)

// AssignmentOrder is the order in which the engine fills a day's rotations.
// Core goes first so the pod-collision rule can compare AM/PM candidates
// against the already chosen Core assignee.
var AssignmentOrder = []Rotation{RotationCore, RotationAM, RotationPM}

// Hours returns the fixed shift duration used for workload accounting.
func (r Rotation) Hours() float64 {
	if r == RotationCore {
		return 6
	}
	return 3
}

// String returns a human-readable representation of the rotation.
func (r Rotation) String() string {
	switch r {
	case RotationAM:
		return "am"
	case RotationCore:
		return "core"
	case RotationPM:
		return "pm"
	default:
		return "unknown"
	}
}

// ParseRotation converts a textual rotation name to its enum value.
func ParseRotation(s string) (Rotation, error) {
	switch s {
	case "am", "AM":
		return RotationAM, nil
	case "core", "Core", "CORE":
		return RotationCore, nil
	case "pm", "PM":
		return RotationPM, nil
	default:
		return 0, fmt.Errorf("unknown rotation %q", s)
	}
}

// MarshalJSON encodes the rotation as its textual name.
func (r Rotation) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a textual rotation name.
func (r *Rotation) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseRotation(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

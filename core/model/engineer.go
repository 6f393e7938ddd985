package model

import "strings"

// Engineer represents a member of the on-call pool.
type Engineer struct {
	Email         string   // identity, compared case-insensitively
	Name          string   // display name
	Qualification Rotation // AM or PM; Core eligibility is derived, never stored
	Pod           string   // team grouping used for same-day collision avoidance
	Deleted       bool     // soft-deleted engineers keep history but get no new shifts
}

// Key returns the canonical lowercase identity used for map lookups.
func (e Engineer) Key() string {
	return strings.ToLower(e.Email)
}

// QualifiedFor reports whether the engineer may take the given rotation.
// Core accepts anyone holding an AM or PM qualification; AM and PM require
// the exact tag.
func (e Engineer) QualifiedFor(r Rotation) bool {
	if r == RotationCore {
		return e.Qualification == RotationAM || e.Qualification == RotationPM
	}
	return e.Qualification == r
}

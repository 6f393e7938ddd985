package model

import (
	"sort"
	"strings"
	"time"
)

// Assignment binds an engineer to one rotation on one date. The base
// schedule holds at most one assignment per (date, rotation); the store
// enforces this with upsert-on-conflict semantics.
type Assignment struct {
	Date     time.Time `json:"date"`
	Rotation Rotation  `json:"rotation"`
	Engineer string    `json:"engineer"`
}

// Key identifies the (date, rotation) slot the assignment occupies.
func (a Assignment) Key() string {
	return a.Date.Format(DateFormat) + "/" + a.Rotation.String()
}

// EngineerKey returns the assignee identity in canonical lowercase form.
func (a Assignment) EngineerKey() string {
	return strings.ToLower(a.Engineer)
}

// Override is a manual correction layered over the base schedule. It has
// the same shape as an Assignment but lives in a separate store: reading
// code prefers the override for a (date, rotation) key when both exist,
// and the base row is never touched.
type Override struct {
	Date     time.Time `json:"date"`
	Rotation Rotation  `json:"rotation"`
	Engineer string    `json:"engineer"`
}

// Key identifies the (date, rotation) slot the override masks.
func (o Override) Key() string {
	return o.Date.Format(DateFormat) + "/" + o.Rotation.String()
}

// EngineerKey returns the override assignee in canonical lowercase form.
func (o Override) EngineerKey() string {
	return strings.ToLower(o.Engineer)
}

// Assignment converts the override into the assignment it stands in for.
func (o Override) Assignment() Assignment {
	return Assignment{Date: o.Date, Rotation: o.Rotation, Engineer: o.Engineer}
}

// SortAssignments orders rows by date, then by rotation slot order within
// the day (am, core, pm).
func SortAssignments(rows []Assignment) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Rotation < rows[j].Rotation
	})
}

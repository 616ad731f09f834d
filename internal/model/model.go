// Package model holds the records persisted by the repository layer and
// returned by the API.
package model

import "time"

// Base carries the timestamps shared by most tables.
type Base struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// NewPage clamps limit into [1, MaxPageLimit] and offset to non-negative.
func NewPage(limit, offset int) Page {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return Page{Limit: limit, Offset: max(offset, 0)}
}

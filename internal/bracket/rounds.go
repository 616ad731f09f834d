// Package bracket models a 16-team single-elimination bracket and scores
// predicted brackets against the actual one.
//
// A bracket is split into a left and a right side. Each side runs its own
// round of 16, quarterfinals and semifinals; the two side champions meet in
// the finals. Slots are position-aligned: slot i of a round is fed by slots
// 2i and 2i+1 of the previous round.
package bracket

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Fixed slot counts. Side rounds are per side.
const (
	RoundOf16Size     = 8
	QuarterFinalsSize = 4
	SemiFinalsSize    = 2
	FinalsSize        = 2
	WinnerSize        = 1

	// TeamCount is the number of teams seeded into a bracket.
	TeamCount = 2 * RoundOf16Size
)

var (
	ErrShape       = errors.New("bracket has the wrong shape")
	ErrProgression = errors.New("bracket pick does not advance from the previous round")
	ErrUnknownTeam = errors.New("bracket references a team outside the tournament")
	ErrPointSystem = errors.New("point system must have exactly 4 non-negative tiers")
)

// Slot is a team pick. An invalid (null) slot is undecided.
type Slot = uuid.NullUUID

// Pick returns a decided slot for the given team.
func Pick(id uuid.UUID) Slot {
	return Slot{UUID: id, Valid: true}
}

// Side is one half of the bracket.
type Side struct {
	RoundOf16     []Slot `json:"round_of_16"`
	QuarterFinals []Slot `json:"quarter_finals"`
	SemiFinals    []Slot `json:"semi_finals"`
}

// Rounds is the full set of picks of a bracket. Finals[0] is the left
// champion, Finals[1] the right one.
type Rounds struct {
	Left       Side   `json:"left"`
	Right      Side   `json:"right"`
	Finals     []Slot `json:"finals"`
	Winner     []Slot `json:"winner"`
	FinalScore string `json:"final_score,omitempty"`
}

// Empty returns a bracket with every slot undecided.
func Empty() Rounds {
	var r Rounds
	r.Normalize()
	return r
}

// Seeded returns an empty bracket whose round of 16 is filled in team
// order: the first eight teams on the left, the rest on the right.
func Seeded(teams []uuid.UUID) (Rounds, error) {
	if len(teams) != TeamCount {
		return Rounds{}, fmt.Errorf("%w: %d teams seeded, want %d", ErrShape, len(teams), TeamCount)
	}

	r := Empty()
	for i, id := range teams {
		if i < RoundOf16Size {
			r.Left.RoundOf16[i] = Pick(id)
		} else {
			r.Right.RoundOf16[i-RoundOf16Size] = Pick(id)
		}
	}
	return r, nil
}

// Normalize pads every missing or short round with undecided slots.
// Rounds that are too long are left alone so ValidateShape can reject them.
func (r *Rounds) Normalize() {
	pad := func(s []Slot, n int) []Slot {
		for len(s) < n {
			s = append(s, Slot{})
		}
		return s
	}

	for _, side := range []*Side{&r.Left, &r.Right} {
		side.RoundOf16 = pad(side.RoundOf16, RoundOf16Size)
		side.QuarterFinals = pad(side.QuarterFinals, QuarterFinalsSize)
		side.SemiFinals = pad(side.SemiFinals, SemiFinalsSize)
	}
	r.Finals = pad(r.Finals, FinalsSize)
	r.Winner = pad(r.Winner, WinnerSize)
}

// SeedFrom replaces the round of 16 on both sides with the seeding of
// another bracket. Predictions never choose their own seeding.
func (r *Rounds) SeedFrom(seed Rounds) {
	r.Left.RoundOf16 = append([]Slot(nil), seed.Left.RoundOf16...)
	r.Right.RoundOf16 = append([]Slot(nil), seed.Right.RoundOf16...)
}

// ValidateShape checks that every round has its fixed slot count and that
// no team is seeded twice.
func (r Rounds) ValidateShape() error {
	checks := []struct {
		name  string
		slots []Slot
		want  int
	}{
		{"left round_of_16", r.Left.RoundOf16, RoundOf16Size},
		{"left quarter_finals", r.Left.QuarterFinals, QuarterFinalsSize},
		{"left semi_finals", r.Left.SemiFinals, SemiFinalsSize},
		{"right round_of_16", r.Right.RoundOf16, RoundOf16Size},
		{"right quarter_finals", r.Right.QuarterFinals, QuarterFinalsSize},
		{"right semi_finals", r.Right.SemiFinals, SemiFinalsSize},
		{"finals", r.Finals, FinalsSize},
		{"winner", r.Winner, WinnerSize},
	}
	for _, c := range checks {
		if len(c.slots) != c.want {
			return fmt.Errorf("%w: %s has %d slots, want %d", ErrShape, c.name, len(c.slots), c.want)
		}
	}

	seen := make(map[uuid.UUID]struct{}, TeamCount)
	for _, s := range append(append([]Slot(nil), r.Left.RoundOf16...), r.Right.RoundOf16...) {
		if !s.Valid {
			continue
		}
		if _, dup := seen[s.UUID]; dup {
			return fmt.Errorf("%w: team %s seeded twice", ErrShape, s.UUID)
		}
		seen[s.UUID] = struct{}{}
	}
	return nil
}

// ValidateProgression checks that every decided pick advances from one of
// the two slots feeding it. It assumes a valid shape.
func (r Rounds) ValidateProgression() error {
	steps := []struct {
		name       string
		prev, next []Slot
	}{
		{"left quarter_finals", r.Left.RoundOf16, r.Left.QuarterFinals},
		{"left semi_finals", r.Left.QuarterFinals, r.Left.SemiFinals},
		{"right quarter_finals", r.Right.RoundOf16, r.Right.QuarterFinals},
		{"right semi_finals", r.Right.QuarterFinals, r.Right.SemiFinals},
		{"finals", concat(r.Left.SemiFinals, r.Right.SemiFinals), r.Finals},
		{"winner", r.Finals, r.Winner},
	}
	for _, st := range steps {
		for i, s := range st.next {
			if !s.Valid {
				continue
			}
			if !samePick(st.prev[2*i], s) && !samePick(st.prev[2*i+1], s) {
				return fmt.Errorf("%w: %s slot %d picks %s", ErrProgression, st.name, i, s.UUID)
			}
		}
	}
	return nil
}

// Validate runs ValidateShape then ValidateProgression.
func (r Rounds) Validate() error {
	if err := r.ValidateShape(); err != nil {
		return err
	}
	return r.ValidateProgression()
}

// ValidateTeams checks that every decided slot names one of the given teams.
func (r Rounds) ValidateTeams(allowed map[uuid.UUID]struct{}) error {
	for id := range r.Teams() {
		if _, ok := allowed[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTeam, id)
		}
	}
	return nil
}

// Teams returns every team referenced by a decided slot.
func (r Rounds) Teams() map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{})
	for _, round := range r.all() {
		for _, s := range round {
			if s.Valid {
				out[s.UUID] = struct{}{}
			}
		}
	}
	return out
}

// Champion returns the decided winner, if any.
func (r Rounds) Champion() (uuid.UUID, bool) {
	if len(r.Winner) == 0 || !r.Winner[0].Valid {
		return uuid.Nil, false
	}
	return r.Winner[0].UUID, true
}

func (r Rounds) all() [][]Slot {
	return [][]Slot{
		r.Left.RoundOf16, r.Left.QuarterFinals, r.Left.SemiFinals,
		r.Right.RoundOf16, r.Right.QuarterFinals, r.Right.SemiFinals,
		r.Finals, r.Winner,
	}
}

func samePick(a, b Slot) bool {
	return a.Valid && b.Valid && a.UUID == b.UUID
}

func concat(a, b []Slot) []Slot {
	out := make([]Slot, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

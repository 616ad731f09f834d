package bracket

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Entry is one predicted bracket on a leaderboard.
type Entry struct {
	Position    int       `json:"position"`
	BracketID   uuid.UUID `json:"bracket_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	Correct     int       `json:"correct_picks"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Rank orders entries by score, then correct picks (both descending), then
// submission time, and assigns competition positions: tied entries share a
// position and the next distinct entry skips ahead ("1, 1, 3").
func Rank(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Correct, a.Correct); c != 0 {
			return c
		}
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})

	for i := range out {
		if i > 0 && out[i].Score == out[i-1].Score && out[i].Correct == out[i-1].Correct {
			out[i].Position = out[i-1].Position
			continue
		}
		out[i].Position = i + 1
	}
	return out
}

// Leaders returns the entries holding first place of a ranked slice.
func Leaders(ranked []Entry) []Entry {
	var out []Entry
	for _, e := range ranked {
		if e.Position != 1 {
			break
		}
		out = append(out, e)
	}
	return out
}

package bracket

import (
	"fmt"
	"strings"
)

// Tier indexes a PointSystem.
type Tier int

const (
	TierQuarterFinals Tier = iota
	TierSemiFinals
	TierFinals
	TierWinner

	tierCount
)

// PointSystem holds the points awarded for one correct pick in each tier,
// in Tier order.
type PointSystem []int

// DefaultPointSystem doubles the reward every round.
func DefaultPointSystem() PointSystem {
	return PointSystem{1, 2, 4, 8}
}

func (p PointSystem) Validate() error {
	if len(p) != int(tierCount) {
		return fmt.Errorf("%w: got %d tiers", ErrPointSystem, len(p))
	}
	for i, v := range p {
		if v < 0 {
			return fmt.Errorf("%w: tier %d is %d", ErrPointSystem, i, v)
		}
	}
	return nil
}

// Breakdown splits a score by round.
type Breakdown struct {
	QuarterFinals int `json:"quarter_finals"`
	SemiFinals    int `json:"semi_finals"`
	Finals        int `json:"finals"`
	Winner        int `json:"winner"`
	Bonus         int `json:"bonus"`
}

// Result is the outcome of scoring one predicted bracket.
type Result struct {
	Total     int       `json:"total"`
	Correct   int       `json:"correct_picks"`
	Breakdown Breakdown `json:"breakdown"`
}

// Score compares predicted against actual slot by slot and sums the points
// of every correct pick. The round of 16 is seeding and never scores. bonus
// is added when both brackets record the same final score.
func Score(actual, predicted Rounds, points PointSystem, bonus int) (Result, error) {
	if err := points.Validate(); err != nil {
		return Result{}, err
	}
	if err := actual.ValidateShape(); err != nil {
		return Result{}, fmt.Errorf("actual bracket: %w", err)
	}
	if err := predicted.ValidateShape(); err != nil {
		return Result{}, fmt.Errorf("predicted bracket: %w", err)
	}

	var res Result
	tally := func(tier Tier, want, got []Slot) int {
		n := 0
		for i := range want {
			if samePick(want[i], got[i]) {
				n++
			}
		}
		res.Correct += n
		return n * points[tier]
	}

	b := &res.Breakdown
	b.QuarterFinals = tally(TierQuarterFinals, actual.Left.QuarterFinals, predicted.Left.QuarterFinals) +
		tally(TierQuarterFinals, actual.Right.QuarterFinals, predicted.Right.QuarterFinals)
	b.SemiFinals = tally(TierSemiFinals, actual.Left.SemiFinals, predicted.Left.SemiFinals) +
		tally(TierSemiFinals, actual.Right.SemiFinals, predicted.Right.SemiFinals)
	b.Finals = tally(TierFinals, actual.Finals, predicted.Finals)
	b.Winner = tally(TierWinner, actual.Winner, predicted.Winner)

	if bonus > 0 && finalScoreMatches(actual.FinalScore, predicted.FinalScore) {
		b.Bonus = bonus
	}

	res.Total = b.QuarterFinals + b.SemiFinals + b.Finals + b.Winner + b.Bonus
	return res, nil
}

func finalScoreMatches(actual, predicted string) bool {
	a := normalizeScore(actual)
	return a != "" && a == normalizeScore(predicted)
}

// normalizeScore drops all whitespace so "2 - 1" and "2-1" compare equal.
func normalizeScore(s string) string {
	return strings.Join(strings.Fields(s), "")
}

package model

import (
	"time"

	"github.com/deppfellow/pickboard/internal/bracket"
	"github.com/google/uuid"
)

type Tournament struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	AuthorID          string              `json:"author_id" db:"author_id"`
	Name              string              `json:"name" db:"name"`
	LogoURL           string              `json:"logo_url" db:"logo_url"`
	BannerURL         string              `json:"banner_url" db:"banner_url"`
	PointSystem       bracket.PointSystem `json:"point_system" db:"point_system"`
	CorrectScoreBonus int                 `json:"correct_score_bonus" db:"correct_score_bonus"`
	WinnerReward      string              `json:"winner_reward" db:"winner_reward"`
	LoserForfeit      string              `json:"loser_forfeit" db:"loser_forfeit"`
	// ResultsAnnouncedVersion is the actual bracket version the results
	// email went out for. Nil until the first announcement.
	ResultsAnnouncedVersion *int64 `json:"-" db:"results_announced_version"`
	Base
}

type Team struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Seed         int       `json:"seed" db:"seed"`
}

// TournamentDetail is a tournament with its teams and actual bracket.
type TournamentDetail struct {
	Tournament
	Teams         []Team   `json:"teams"`
	ActualBracket *Bracket `json:"actual_bracket"`
}

// TeamIDs returns the team ids in seed order.
func (d *TournamentDetail) TeamIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(d.Teams))
	for i, t := range d.Teams {
		ids[i] = t.ID
	}
	return ids
}

// TeamSet returns the teams as a lookup set.
func (d *TournamentDetail) TeamSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(d.Teams))
	for _, t := range d.Teams {
		set[t.ID] = struct{}{}
	}
	return set
}

// NewTournament is the input for creating a tournament and its teams.
type NewTournament struct {
	AuthorID          string
	Name              string
	LogoURL           string
	BannerURL         string
	PointSystem       bracket.PointSystem
	CorrectScoreBonus int
	WinnerReward      string
	LoserForfeit      string
	Teams             []string
}

// Bracket is either a tournament's actual bracket or one user's prediction.
type Bracket struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	TournamentID uuid.UUID         `json:"tournament_id" db:"tournament_id"`
	AuthorID     string            `json:"author_id" db:"author_id"`
	IsActual     bool              `json:"is_actual" db:"is_actual"`
	Rounds       bracket.Rounds    `json:"rounds" db:"rounds"`
	Score        int               `json:"score" db:"score"`
	CorrectPicks int               `json:"correct_picks" db:"correct_picks"`
	Breakdown    bracket.Breakdown `json:"breakdown" db:"breakdown"`
	Version      int64             `json:"-" db:"version"`
	SubmittedAt  time.Time         `json:"submitted_at" db:"submitted_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// BracketScore is a computed score ready to be persisted. Version is the
// bracket version it was computed from.
type BracketScore struct {
	BracketID uuid.UUID
	Version   int64
	Result    bracket.Result
}

// ScoreRun is the output of one recalculation together with the actual
// bracket version it was scored against.
type ScoreRun struct {
	TournamentID  uuid.UUID
	ActualVersion int64
	Scores        []BracketScore
}

// Prediction is a predicted bracket joined with its author's username.
type Prediction struct {
	Bracket
	Username string `json:"username" db:"username"`
}

// Leaderboard is the ranked standing of a tournament.
type Leaderboard struct {
	TournamentID uuid.UUID       `json:"tournament_id"`
	Entries      []bracket.Entry `json:"entries"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"context"

	"github.com/deppfellow/pickboard/internal/bracket"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type ProfileRepository interface {
	Ensure(ctx context.Context, userID string) (*model.Profile, bool, error)
	GetByID(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, update model.UpdateProfile) (*model.Profile, error)
	RefreshRatings(ctx context.Context) (int64, error)
	ListReactors(ctx context.Context, noteID uuid.UUID, kind model.ReactionKind) ([]model.ProfileSummary, error)
}

type NoteRepository interface {
	Create(ctx context.Context, authorID, content string) (*model.Note, error)
	List(ctx context.Context, filter model.NoteFilter) ([]model.Note, error)
	Delete(ctx context.Context, id uuid.UUID, authorID string) error
	AddComment(ctx context.Context, noteID uuid.UUID, authorID, content string) (*model.Comment, error)
	ToggleReaction(ctx context.Context, noteID uuid.UUID, userID string, kind model.ReactionKind) (model.ReactionCounts, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type TournamentRepository interface {
	Create(ctx context.Context, in model.NewTournament) (*model.TournamentDetail, error)
	List(ctx context.Context, page model.Page) ([]model.Tournament, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Tournament, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.TournamentDetail, error)
	Delete(ctx context.Context, id uuid.UUID, authorID string) error
	PurgeAll(ctx context.Context) (brackets, tournaments int64, err error)
	ClaimResultsAnnouncement(ctx context.Context, id uuid.UUID, actualVersion int64) (bool, error)
}

type BracketRepository interface {
	GetActual(ctx context.Context, tournamentID uuid.UUID) (*model.Bracket, error)
	UpdateActual(ctx context.Context, tournamentID uuid.UUID, rounds bracket.Rounds) (*model.Bracket, error)
	UpsertPrediction(ctx context.Context, tournamentID uuid.UUID, authorID string, rounds bracket.Rounds) (*model.Bracket, error)
	GetPrediction(ctx context.Context, tournamentID uuid.UUID, authorID string) (*model.Bracket, error)
	ListPredictions(ctx context.Context, tournamentID uuid.UUID) ([]model.Prediction, error)
	SaveScores(ctx context.Context, run model.ScoreRun) error
}

// LeaderboardCache is satisfied by cache.LeaderboardCache.
type LeaderboardCache interface {
	Get(ctx context.Context, tournamentID uuid.UUID) (*model.Leaderboard, bool, error)
	Set(ctx context.Context, lb *model.Leaderboard) error
	Invalidate(ctx context.Context, tournamentID uuid.UUID) error
}

// Enqueuer is satisfied by job.JobService.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task) error
}

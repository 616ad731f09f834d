package service

import (
	"context"

	"github.com/deppfellow/pickboard/internal/bracket"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) Ensure(ctx context.Context, userID string) (*model.Profile, bool, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Bool(1), args.Error(2)
}

func (m *mockProfiles) GetByID(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *mockProfiles) Update(ctx context.Context, userID string, update model.UpdateProfile) (*model.Profile, error) {
	args := m.Called(ctx, userID, update)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *mockProfiles) RefreshRatings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProfiles) ListReactors(ctx context.Context, noteID uuid.UUID, kind model.ReactionKind) ([]model.ProfileSummary, error) {
	args := m.Called(ctx, noteID, kind)
	out, _ := args.Get(0).([]model.ProfileSummary)
	return out, args.Error(1)
}

type mockNotes struct{ mock.Mock }

func (m *mockNotes) Create(ctx context.Context, authorID, content string) (*model.Note, error) {
	args := m.Called(ctx, authorID, content)
	n, _ := args.Get(0).(*model.Note)
	return n, args.Error(1)
}

func (m *mockNotes) List(ctx context.Context, filter model.NoteFilter) ([]model.Note, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]model.Note)
	return out, args.Error(1)
}

func (m *mockNotes) Delete(ctx context.Context, id uuid.UUID, authorID string) error {
	return m.Called(ctx, id, authorID).Error(0)
}

func (m *mockNotes) AddComment(ctx context.Context, noteID uuid.UUID, authorID, content string) (*model.Comment, error) {
	args := m.Called(ctx, noteID, authorID, content)
	c, _ := args.Get(0).(*model.Comment)
	return c, args.Error(1)
}

func (m *mockNotes) ToggleReaction(ctx context.Context, noteID uuid.UUID, userID string, kind model.ReactionKind) (model.ReactionCounts, error) {
	args := m.Called(ctx, noteID, userID, kind)
	return args.Get(0).(model.ReactionCounts), args.Error(1)
}

func (m *mockNotes) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockTournaments struct{ mock.Mock }

func (m *mockTournaments) Create(ctx context.Context, in model.NewTournament) (*model.TournamentDetail, error) {
	args := m.Called(ctx, in)
	d, _ := args.Get(0).(*model.TournamentDetail)
	return d, args.Error(1)
}

func (m *mockTournaments) List(ctx context.Context, page model.Page) ([]model.Tournament, error) {
	args := m.Called(ctx, page)
	out, _ := args.Get(0).([]model.Tournament)
	return out, args.Error(1)
}

func (m *mockTournaments) GetByID(ctx context.Context, id uuid.UUID) (*model.Tournament, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Tournament)
	return t, args.Error(1)
}

func (m *mockTournaments) GetDetail(ctx context.Context, id uuid.UUID) (*model.TournamentDetail, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*model.TournamentDetail)
	return d, args.Error(1)
}

func (m *mockTournaments) Delete(ctx context.Context, id uuid.UUID, authorID string) error {
	return m.Called(ctx, id, authorID).Error(0)
}

func (m *mockTournaments) PurgeAll(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockTournaments) ClaimResultsAnnouncement(ctx context.Context, id uuid.UUID, actualVersion int64) (bool, error) {
	args := m.Called(ctx, id, actualVersion)
	return args.Bool(0), args.Error(1)
}

type mockBrackets struct{ mock.Mock }

func (m *mockBrackets) GetActual(ctx context.Context, tournamentID uuid.UUID) (*model.Bracket, error) {
	args := m.Called(ctx, tournamentID)
	b, _ := args.Get(0).(*model.Bracket)
	return b, args.Error(1)
}

func (m *mockBrackets) UpdateActual(ctx context.Context, tournamentID uuid.UUID, rounds bracket.Rounds) (*model.Bracket, error) {
	args := m.Called(ctx, tournamentID, rounds)
	b, _ := args.Get(0).(*model.Bracket)
	return b, args.Error(1)
}

func (m *mockBrackets) UpsertPrediction(ctx context.Context, tournamentID uuid.UUID, authorID string, rounds bracket.Rounds) (*model.Bracket, error) {
	args := m.Called(ctx, tournamentID, authorID, rounds)
	b, _ := args.Get(0).(*model.Bracket)
	return b, args.Error(1)
}

func (m *mockBrackets) GetPrediction(ctx context.Context, tournamentID uuid.UUID, authorID string) (*model.Bracket, error) {
	args := m.Called(ctx, tournamentID, authorID)
	b, _ := args.Get(0).(*model.Bracket)
	return b, args.Error(1)
}

func (m *mockBrackets) ListPredictions(ctx context.Context, tournamentID uuid.UUID) ([]model.Prediction, error) {
	args := m.Called(ctx, tournamentID)
	out, _ := args.Get(0).([]model.Prediction)
	return out, args.Error(1)
}

func (m *mockBrackets) SaveScores(ctx context.Context, run model.ScoreRun) error {
	return m.Called(ctx, run).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, tournamentID uuid.UUID) (*model.Leaderboard, bool, error) {
	args := m.Called(ctx, tournamentID)
	lb, _ := args.Get(0).(*model.Leaderboard)
	return lb, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, lb *model.Leaderboard) error {
	return m.Called(ctx, lb).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, tournamentID uuid.UUID) error {
	return m.Called(ctx, tournamentID).Error(0)
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) Enqueue(ctx context.Context, task *asynq.Task) error {
	return m.Called(ctx, task).Error(0)
}

// taskOfType matches an enqueued task by type.
func taskOfType(taskType string) any {
	return mock.MatchedBy(func(t *asynq.Task) bool { return t.Type() == taskType })
}

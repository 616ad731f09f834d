package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/pickboard/internal/bracket"
	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/deppfellow/pickboard/internal/lib/job"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/deppfellow/pickboard/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type tournamentFixture struct {
	svc         *TournamentService
	tournaments *mockTournaments
	brackets    *mockBrackets
	cache       *mockCache
	jobs        *mockEnqueuer
	detail      *model.TournamentDetail
	teams       []uuid.UUID
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()

	f := &tournamentFixture{
		tournaments: &mockTournaments{},
		brackets:    &mockBrackets{},
		cache:       &mockCache{},
		jobs:        &mockEnqueuer{},
	}
	f.svc = NewTournamentService(f.tournaments, f.brackets, f.cache, f.jobs, nil)
	f.svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	id := uuid.New()
	f.detail = &model.TournamentDetail{
		Tournament: model.Tournament{
			ID:                id,
			AuthorID:          "author",
			Name:              "Spring Cup",
			PointSystem:       bracket.DefaultPointSystem(),
			CorrectScoreBonus: 5,
			WinnerReward:      "Trophy",
		},
	}
	for i := 0; i < bracket.TeamCount; i++ {
		team := model.Team{ID: uuid.New(), TournamentID: id, Seed: i + 1}
		f.detail.Teams = append(f.detail.Teams, team)
		f.teams = append(f.teams, team.ID)
	}

	seeded, err := bracket.Seeded(f.teams)
	require.NoError(t, err)
	f.detail.ActualBracket = &model.Bracket{TournamentID: id, AuthorID: "author", IsActual: true, Rounds: seeded}
	return f
}

// playOut advances the even-indexed team of every pairing, leaving
// teams[0] champion.
func (f *tournamentFixture) playOut() bracket.Rounds {
	p := bracket.Pick
	r := f.detail.ActualBracket.Rounds
	r.Left.QuarterFinals = []bracket.Slot{p(f.teams[0]), p(f.teams[2]), p(f.teams[4]), p(f.teams[6])}
	r.Left.SemiFinals = []bracket.Slot{p(f.teams[0]), p(f.teams[4])}
	r.Right.QuarterFinals = []bracket.Slot{p(f.teams[8]), p(f.teams[10]), p(f.teams[12]), p(f.teams[14])}
	r.Right.SemiFinals = []bracket.Slot{p(f.teams[8]), p(f.teams[12])}
	r.Finals = []bracket.Slot{p(f.teams[0]), p(f.teams[8])}
	r.Winner = []bracket.Slot{p(f.teams[0])}
	r.FinalScore = "2-1"
	return r
}

func requireHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
	if code != "" {
		assert.Equal(t, code, httpErr.Code)
	}
}

func teamNames() []string {
	names := make([]string, bracket.TeamCount)
	for i := range names {
		names[i] = string(rune('A'+i)) + " United"
	}
	return names
}

func TestCreateTournament(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults point system and trims names", func(t *testing.T) {
		f := newTournamentFixture(t)
		names := teamNames()
		names[0] = "  A United  "

		f.tournaments.On("Create", ctx, mock.MatchedBy(func(in model.NewTournament) bool {
			return assert.ObjectsAreEqual(bracket.DefaultPointSystem(), in.PointSystem) &&
				in.Teams[0] == "A United"
		})).Return(f.detail, nil)

		got, err := f.svc.Create(ctx, model.NewTournament{AuthorID: "author", Name: "Cup", Teams: names})
		require.NoError(t, err)
		assert.Equal(t, f.detail.ID, got.ID)
	})

	t.Run("configured default points", func(t *testing.T) {
		f := newTournamentFixture(t)
		svc := NewTournamentService(f.tournaments, f.brackets, f.cache, f.jobs, []int{2, 3, 5, 10})
		f.tournaments.On("Create", ctx, mock.MatchedBy(func(in model.NewTournament) bool {
			return assert.ObjectsAreEqual(bracket.PointSystem{2, 3, 5, 10}, in.PointSystem)
		})).Return(f.detail, nil)

		_, err := svc.Create(ctx, model.NewTournament{Teams: teamNames()})
		require.NoError(t, err)
	})

	t.Run("invalid point system", func(t *testing.T) {
		f := newTournamentFixture(t)
		_, err := f.svc.Create(ctx, model.NewTournament{PointSystem: bracket.PointSystem{1, 2}, Teams: teamNames()})
		requireHTTPError(t, err, http.StatusBadRequest, "INVALID_POINT_SYSTEM")
	})

	t.Run("wrong team count", func(t *testing.T) {
		f := newTournamentFixture(t)
		_, err := f.svc.Create(ctx, model.NewTournament{Teams: teamNames()[:8]})
		requireHTTPError(t, err, http.StatusBadRequest, "INVALID_TEAM_COUNT")
	})

	t.Run("duplicate and blank names", func(t *testing.T) {
		f := newTournamentFixture(t)
		names := teamNames()
		names[3] = "a united"
		names[5] = "   "

		_, err := f.svc.Create(ctx, model.NewTournament{Teams: names})
		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, []errs.FieldError{
			{Field: "teams[3]", Error: "duplicates teams[0]"},
			{Field: "teams[5]", Error: "is required"},
		}, httpErr.Errors)
		f.tournaments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdateActualBracket(t *testing.T) {
	ctx := context.Background()

	t.Run("only the author", func(t *testing.T) {
		f := newTournamentFixture(t)
		f.tournaments.On("GetDetail", ctx, f.detail.ID).Return(f.detail, nil)

		_, err := f.svc.UpdateActualBracket(ctx, f.detail.ID, "someone_else", f.playOut())
		requireHTTPError(t, err, http.StatusForbidden, "")
		f.brackets.AssertNotCalled(t, "UpdateActual", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("keeps seeding and schedules recalculation", func(t *testing.T) {
		f := newTournamentFixture(t)
		rounds := f.playOut()
		want := rounds

		// A caller cannot reseed the round of 16.
		rounds.Left.RoundOf16 = nil
		rounds.Right.RoundOf16 = nil

		f.tournaments.On("GetDetail", ctx, f.detail.ID).Return(f.detail, nil)
		f.brackets.On("UpdateActual", ctx, f.detail.ID, want).Return(&model.Bracket{Rounds: want}, nil)
		f.cache.On("Invalidate", ctx, f.detail.ID).Return(nil)
		f.jobs.On("Enqueue", ctx, taskOfType(job.TaskTournamentRecalculate)).Return(nil).Once()

		_, err := f.svc.UpdateActualBracket(ctx, f.detail.ID, "author", rounds)
		require.NoError(t, err)
		f.brackets.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.jobs.AssertExpectations(t)
	})

	t.Run("bad progression", func(t *testing.T) {
		f := newTournamentFixture(t)
		rounds := f.playOut()
		rounds.Winner = []bracket.Slot{bracket.Pick(f.teams[15])}

		f.tournaments.On("GetDetail", ctx, f.detail.ID).Return(f.detail, nil)
		_, err := f.svc.UpdateActualBracket(ctx, f.detail.ID, "author", rounds)
		requireHTTPError(t, err, http.StatusBadRequest, "INVALID_BRACKET_PROGRESSION")
	})
}

func TestSubmitPrediction(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown team", func(t *testing.T) {
		f := newTournamentFixture(t)
		other := newTournamentFixture(t)

		// Seeded teams that are not among the tournament's teams.
		detail := *f.detail
		detail.Teams = other.detail.Teams
		f.tournaments.On("GetDetail", ctx, f.detail.ID).Return(&detail, nil)

		_, err := f.svc.SubmitPrediction(ctx, f.detail.ID, "user_1", bracket.Rounds{})
		requireHTTPError(t, err, http.StatusBadRequest, "UNKNOWN_TEAM")
	})

	t.Run("upserts and schedules recalculation", func(t *testing.T) {
		f := newTournamentFixture(t)
		rounds := f.playOut()
		saved := &model.Bracket{ID: uuid.New(), Rounds: rounds}

		f.tournaments.On("GetDetail", ctx, f.detail.ID).Return(f.detail, nil)
		f.brackets.On("UpsertPrediction", ctx, f.detail.ID, "user_1", rounds).Return(saved, nil)
		f.cache.On("Invalidate", ctx, f.detail.ID).Return(errors.New("redis down"))
		f.jobs.On("Enqueue", ctx, taskOfType(job.TaskTournamentRecalculate)).Return(nil)

		got, err := f.svc.SubmitPrediction(ctx, f.detail.ID, "user_1", rounds)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, got.ID)
		f.jobs.AssertExpectations(t)
	})
}

func TestRecalculateScores(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	actual := f.playOut()
	perfect := actual
	partial := actual
	partial.Finals = []bracket.Slot{bracket.Pick(f.teams[0]), bracket.Pick(f.teams[12])}
	partial.Winner = []bracket.Slot{bracket.Pick(f.teams[12])}
	partial.FinalScore = ""

	submitted := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	predictions := []model.Prediction{
		{Bracket: model.Bracket{ID: uuid.New(), AuthorID: "user_b", Rounds: partial, Version: 2, SubmittedAt: submitted}, Username: "bob"},
		{Bracket: model.Bracket{ID: uuid.New(), AuthorID: "user_a", Rounds: perfect, Version: 1, SubmittedAt: submitted.Add(time.Hour)}, Username: "alice"},
	}

	f.tournaments.On("GetByID", ctx, f.detail.ID).Return(&f.detail.Tournament, nil)
	f.brackets.On("GetActual", ctx, f.detail.ID).Return(&model.Bracket{Rounds: actual, IsActual: true, Version: 4}, nil)
	f.brackets.On("ListPredictions", ctx, f.detail.ID).Return(predictions, nil)

	var saved model.ScoreRun
	f.brackets.On("SaveScores", ctx, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(model.ScoreRun) }).
		Return(nil)
	f.cache.On("Set", ctx, mock.Anything).Return(nil)
	f.tournaments.On("ClaimResultsAnnouncement", ctx, f.detail.ID, int64(4)).Return(true, nil).Once()
	f.jobs.On("Enqueue", ctx, taskOfType(job.TaskTournamentResultsEmail)).Return(nil).Once()

	lb, err := f.svc.RecalculateScores(ctx, f.detail.ID)
	require.NoError(t, err)

	assert.Equal(t, f.detail.ID, saved.TournamentID)
	assert.Equal(t, int64(4), saved.ActualVersion)
	require.Len(t, saved.Scores, 2)
	// 8 + 4*2 + 4*1 (one finalist) + 0 winner.
	assert.Equal(t, 20, saved.Scores[0].Result.Total)
	assert.Equal(t, int64(2), saved.Scores[0].Version)
	// 8 + 8 + 8 + 8 + 5 bonus.
	assert.Equal(t, 37, saved.Scores[1].Result.Total)
	assert.Equal(t, int64(1), saved.Scores[1].Version)

	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "alice", lb.Entries[0].Username)
	assert.Equal(t, 1, lb.Entries[0].Position)
	assert.Equal(t, 2, lb.Entries[1].Position)
	assert.Equal(t, f.svc.now().UTC(), lb.GeneratedAt)

	f.jobs.AssertExpectations(t)
	f.tournaments.AssertExpectations(t)
	f.cache.AssertCalled(t, "Set", ctx, lb)
}

func TestRecalculateScoresAnnouncesOncePerActualVersion(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	actual := f.playOut()
	predictions := []model.Prediction{
		{Bracket: model.Bracket{ID: uuid.New(), AuthorID: "user_a", Rounds: actual, Version: 1}, Username: "alice"},
	}

	f.tournaments.On("GetByID", ctx, f.detail.ID).Return(&f.detail.Tournament, nil)
	f.brackets.On("GetActual", ctx, f.detail.ID).Return(&model.Bracket{Rounds: actual, IsActual: true, Version: 7}, nil)
	f.brackets.On("ListPredictions", ctx, f.detail.ID).Return(predictions, nil)
	f.brackets.On("SaveScores", ctx, mock.Anything).Return(nil)
	f.cache.On("Set", ctx, mock.Anything).Return(nil)
	f.tournaments.On("ClaimResultsAnnouncement", ctx, f.detail.ID, int64(7)).Return(true, nil).Once()
	f.tournaments.On("ClaimResultsAnnouncement", ctx, f.detail.ID, int64(7)).Return(false, nil)
	f.jobs.On("Enqueue", ctx, taskOfType(job.TaskTournamentResultsEmail)).Return(nil)

	for i := 0; i < 3; i++ {
		_, err := f.svc.RecalculateScores(ctx, f.detail.ID)
		require.NoError(t, err)
	}

	f.jobs.AssertNumberOfCalls(t, "Enqueue", 1)
	f.tournaments.AssertNumberOfCalls(t, "ClaimResultsAnnouncement", 3)
}

func TestRecalculateScoresRetriesStaleRun(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	bracketID := uuid.New()
	before := []model.Prediction{
		{Bracket: model.Bracket{ID: bracketID, AuthorID: "user_a", Rounds: f.detail.ActualBracket.Rounds, Version: 1}, Username: "alice"},
	}
	after := []model.Prediction{
		{Bracket: model.Bracket{ID: bracketID, AuthorID: "user_a", Rounds: f.detail.ActualBracket.Rounds, Version: 2}, Username: "alice"},
	}

	f.tournaments.On("GetByID", ctx, f.detail.ID).Return(&f.detail.Tournament, nil)
	f.brackets.On("GetActual", ctx, f.detail.ID).Return(f.detail.ActualBracket, nil)
	f.brackets.On("ListPredictions", ctx, f.detail.ID).Return(before, nil).Once()
	f.brackets.On("ListPredictions", ctx, f.detail.ID).Return(after, nil).Once()

	var runs []model.ScoreRun
	record := func(args mock.Arguments) { runs = append(runs, args.Get(1).(model.ScoreRun)) }
	f.brackets.On("SaveScores", ctx, mock.Anything).Run(record).Return(repository.ErrStaleScores).Once()
	f.brackets.On("SaveScores", ctx, mock.Anything).Run(record).Return(nil).Once()
	f.cache.On("Set", ctx, mock.Anything).Return(nil)

	lb, err := f.svc.RecalculateScores(ctx, f.detail.ID)
	require.NoError(t, err)
	require.Len(t, lb.Entries, 1)

	require.Len(t, runs, 2)
	assert.Equal(t, int64(1), runs[0].Scores[0].Version)
	assert.Equal(t, int64(2), runs[1].Scores[0].Version)
	f.cache.AssertNumberOfCalls(t, "Set", 1)
}

func TestRecalculateScoresGivesUpWhenAlwaysStale(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	f.tournaments.On("GetByID", ctx, f.detail.ID).Return(&f.detail.Tournament, nil)
	f.brackets.On("GetActual", ctx, f.detail.ID).Return(f.detail.ActualBracket, nil)
	f.brackets.On("ListPredictions", ctx, f.detail.ID).Return([]model.Prediction{}, nil)
	f.brackets.On("SaveScores", ctx, mock.Anything).Return(repository.ErrStaleScores)

	_, err := f.svc.RecalculateScores(ctx, f.detail.ID)
	requireHTTPError(t, err, http.StatusConflict, "SCORES_STALE")
	f.brackets.AssertNumberOfCalls(t, "SaveScores", scoreAttempts)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestRecalculateScoresUndecidedSendsNoEmail(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)

	f.tournaments.On("GetByID", ctx, f.detail.ID).Return(&f.detail.Tournament, nil)
	f.brackets.On("GetActual", ctx, f.detail.ID).Return(f.detail.ActualBracket, nil)
	f.brackets.On("ListPredictions", ctx, f.detail.ID).Return([]model.Prediction{}, nil)
	f.brackets.On("SaveScores", ctx, mock.Anything).Return(nil)
	f.cache.On("Set", ctx, mock.Anything).Return(errors.New("redis down"))

	lb, err := f.svc.RecalculateScores(ctx, f.detail.ID)
	require.NoError(t, err)
	assert.Empty(t, lb.Entries)
	f.jobs.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestRecalculateRequiresAuthor(t *testing.T) {
	ctx := context.Background()
	f := newTournamentFixture(t)
	f.tournaments.On("GetDetail", ctx, f.detail.ID).Return(f.detail, nil)

	_, err := f.svc.Recalculate(ctx, f.detail.ID, "intruder")
	requireHTTPError(t, err, http.StatusForbidden, "")
	f.brackets.AssertNotCalled(t, "ListPredictions", mock.Anything, mock.Anything)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		f := newTournamentFixture(t)
		cached := &model.Leaderboard{TournamentID: f.detail.ID}
		f.cache.On("Get", ctx, f.detail.ID).Return(cached, true, nil)

		got, err := f.svc.Leaderboard(ctx, f.detail.ID)
		require.NoError(t, err)
		assert.Same(t, cached, got)
		f.brackets.AssertNotCalled(t, "ListPredictions", mock.Anything, mock.Anything)
	})

	t.Run("miss ranks stored scores", func(t *testing.T) {
		f := newTournamentFixture(t)
		at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		f.cache.On("Get", ctx, f.detail.ID).Return(nil, false, errors.New("redis down"))
		f.tournaments.On("GetByID", ctx, f.detail.ID).Return(&f.detail.Tournament, nil)
		f.brackets.On("ListPredictions", ctx, f.detail.ID).Return([]model.Prediction{
			{Bracket: model.Bracket{ID: uuid.New(), AuthorID: "a", Score: 10, CorrectPicks: 6, SubmittedAt: at}, Username: "a"},
			{Bracket: model.Bracket{ID: uuid.New(), AuthorID: "b", Score: 12, CorrectPicks: 7, SubmittedAt: at}, Username: "b"},
			{Bracket: model.Bracket{ID: uuid.New(), AuthorID: "c", Score: 10, CorrectPicks: 6, SubmittedAt: at.Add(time.Minute)}, Username: "c"},
		}, nil)
		f.cache.On("Set", ctx, mock.Anything).Return(nil)

		got, err := f.svc.Leaderboard(ctx, f.detail.ID)
		require.NoError(t, err)

		positions := make([]int, len(got.Entries))
		names := make([]string, len(got.Entries))
		for i, e := range got.Entries {
			positions[i], names[i] = e.Position, e.Username
		}
		assert.Equal(t, []int{1, 2, 2}, positions)
		assert.Equal(t, []string{"b", "a", "c"}, names)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		f := newTournamentFixture(t)
		notFound := errs.NewNotFoundError("Tournament not found", true, nil)
		f.cache.On("Get", ctx, f.detail.ID).Return(nil, false, nil)
		f.tournaments.On("GetByID", ctx, f.detail.ID).Return(nil, notFound)

		_, err := f.svc.Leaderboard(ctx, f.detail.ID)
		requireHTTPError(t, err, http.StatusNotFound, "")
	})
}

func TestPrimaryEmail(t *testing.T) {
	primaryID := "idn_2"
	u := &clerk.User{
		PrimaryEmailAddressID: &primaryID,
		EmailAddresses: []*clerk.EmailAddress{
			{ID: "idn_1", EmailAddress: "old@example.com"},
			{ID: "idn_2", EmailAddress: "main@example.com"},
		},
	}

	got, err := primaryEmail(u, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", got)

	u.PrimaryEmailAddressID = nil
	got, err = primaryEmail(u, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "old@example.com", got)

	_, err = primaryEmail(&clerk.User{}, "user_1")
	assert.ErrorIs(t, err, ErrNoEmail)
}

func TestLookupEmail(t *testing.T) {
	a := &AuthService{getUser: func(ctx context.Context, id string) (*clerk.User, error) {
		if id == "missing" {
			return nil, errors.New("not found")
		}
		return &clerk.User{EmailAddresses: []*clerk.EmailAddress{{ID: "idn", EmailAddress: id + "@example.com"}}}, nil
	}}

	got, err := a.LookupEmail(context.Background(), "dana")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", got)

	_, err = a.LookupEmail(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/pickboard/internal/bracket"
	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/deppfellow/pickboard/internal/lib/job"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/deppfellow/pickboard/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TournamentService struct {
	tournaments   TournamentRepository
	brackets      BracketRepository
	cache         LeaderboardCache
	jobs          Enqueuer
	defaultPoints bracket.PointSystem
	now           func() time.Time
}

// NewTournamentService builds the service. An empty defaultPoints falls
// back to bracket.DefaultPointSystem.
func NewTournamentService(
	tournaments TournamentRepository,
	brackets BracketRepository,
	cache LeaderboardCache,
	jobs Enqueuer,
	defaultPoints []int,
) *TournamentService {
	points := bracket.PointSystem(defaultPoints)
	if len(points) == 0 {
		points = bracket.DefaultPointSystem()
	}

	return &TournamentService{
		tournaments:   tournaments,
		brackets:      brackets,
		cache:         cache,
		jobs:          jobs,
		defaultPoints: points,
		now:           time.Now,
	}
}

func (s *TournamentService) Create(ctx context.Context, in model.NewTournament) (*model.TournamentDetail, error) {
	if len(in.PointSystem) == 0 {
		in.PointSystem = append(bracket.PointSystem(nil), s.defaultPoints...)
	}
	if err := in.PointSystem.Validate(); err != nil {
		return nil, bracketError(err)
	}

	teams, err := normalizeTeams(in.Teams)
	if err != nil {
		return nil, err
	}
	in.Teams = teams

	detail, err := s.tournaments.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "tournament_created").
		Str("tournament_id", detail.ID.String()).
		Msg("tournament created")
	return detail, nil
}

// normalizeTeams trims team names and requires exactly bracket.TeamCount
// distinct, non-empty names.
func normalizeTeams(names []string) ([]string, error) {
	if len(names) != bracket.TeamCount {
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("A tournament needs exactly %d teams", bracket.TeamCount),
			true, errs.Code("INVALID_TEAM_COUNT"), nil, nil,
		)
	}

	var fieldErrors []errs.FieldError
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))

	for i, name := range names {
		name = strings.TrimSpace(name)
		out[i] = name
		field := fmt.Sprintf("teams[%d]", i)

		switch {
		case name == "":
			fieldErrors = append(fieldErrors, errs.FieldError{Field: field, Error: "is required"})
		case len(name) > 100:
			fieldErrors = append(fieldErrors, errs.FieldError{Field: field, Error: "must not exceed 100 characters"})
		}

		key := strings.ToLower(name)
		if first, dup := seen[key]; dup && name != "" {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: field,
				Error: fmt.Sprintf("duplicates teams[%d]", first),
			})
			continue
		}
		seen[key] = i
	}

	if fieldErrors != nil {
		return nil, errs.NewBadRequestError("Validation failed", true, nil, fieldErrors, nil)
	}
	return out, nil
}

func (s *TournamentService) List(ctx context.Context, page model.Page) ([]model.Tournament, error) {
	return s.tournaments.List(ctx, page)
}

func (s *TournamentService) Get(ctx context.Context, id uuid.UUID) (*model.TournamentDetail, error) {
	return s.tournaments.GetDetail(ctx, id)
}

// Delete removes a tournament owned by userID. Tournaments of other users
// are reported as not found.
func (s *TournamentService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	if err := s.tournaments.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	zerolog.Ctx(ctx).Info().
		Str("event", "tournament_deleted").
		Str("tournament_id", id.String()).
		Msg("tournament deleted")
	return nil
}

// PurgeAll deletes every bracket and tournament.
func (s *TournamentService) PurgeAll(ctx context.Context) (brackets, tournaments int64, err error) {
	brackets, tournaments, err = s.tournaments.PurgeAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	zerolog.Ctx(ctx).Warn().
		Int64("brackets", brackets).
		Int64("tournaments", tournaments).
		Msg("purged tournaments")
	return brackets, tournaments, nil
}

// ownedDetail loads a tournament and checks that userID created it.
func (s *TournamentService) ownedDetail(ctx context.Context, id uuid.UUID, userID string) (*model.TournamentDetail, error) {
	detail, err := s.tournaments.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.AuthorID != userID {
		return nil, errs.NewForbiddenError("Only the tournament author can do this", true)
	}
	return detail, nil
}

// prepareRounds pads rounds, copies the tournament's seeding into them and
// validates the result against the tournament's teams.
func prepareRounds(detail *model.TournamentDetail, rounds bracket.Rounds) (bracket.Rounds, error) {
	rounds.Normalize()
	if detail.ActualBracket != nil {
		rounds.SeedFrom(detail.ActualBracket.Rounds)
	}

	if err := rounds.Validate(); err != nil {
		return rounds, bracketError(err)
	}
	if err := rounds.ValidateTeams(detail.TeamSet()); err != nil {
		return rounds, bracketError(err)
	}
	rounds.FinalScore = strings.TrimSpace(rounds.FinalScore)
	return rounds, nil
}

// UpdateActualBracket records real results. Only the author may do it; the
// round of 16 keeps its original seeding.
func (s *TournamentService) UpdateActualBracket(ctx context.Context, id uuid.UUID, userID string, rounds bracket.Rounds) (*model.Bracket, error) {
	detail, err := s.ownedDetail(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	rounds, err = prepareRounds(detail, rounds)
	if err != nil {
		return nil, err
	}

	b, err := s.brackets.UpdateActual(ctx, id, rounds)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "actual_bracket_updated").
		Str("tournament_id", id.String()).
		Msg("actual bracket updated")

	s.invalidate(ctx, id)
	s.scheduleRecalculation(ctx, id)
	return b, nil
}

// SubmitPrediction creates or replaces userID's prediction. Its score is
// reset until the scheduled recalculation runs.
func (s *TournamentService) SubmitPrediction(ctx context.Context, id uuid.UUID, userID string, rounds bracket.Rounds) (*model.Bracket, error) {
	detail, err := s.tournaments.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	rounds, err = prepareRounds(detail, rounds)
	if err != nil {
		return nil, err
	}

	b, err := s.brackets.UpsertPrediction(ctx, id, userID, rounds)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "prediction_submitted").
		Str("tournament_id", id.String()).
		Str("bracket_id", b.ID.String()).
		Msg("prediction submitted")

	s.invalidate(ctx, id)
	s.scheduleRecalculation(ctx, id)
	return b, nil
}

func (s *TournamentService) GetMyPrediction(ctx context.Context, id uuid.UUID, userID string) (*model.Bracket, error) {
	return s.brackets.GetPrediction(ctx, id, userID)
}

// Recalculate runs a synchronous recalculation on behalf of the author.
func (s *TournamentService) Recalculate(ctx context.Context, id uuid.UUID, userID string) (*model.Leaderboard, error) {
	if _, err := s.ownedDetail(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.RecalculateScores(ctx, id)
}

// scoreAttempts bounds how often a recalculation restarts after brackets
// changed under it.
const scoreAttempts = 3

// RecalculateScores scores every prediction of a tournament against its
// actual bracket, persists the scores and caches the ranked leaderboard.
// A run that raced with a bracket update starts over from fresh reads.
// Once the actual winner is decided the leaders are emailed their result,
// once per actual bracket version.
func (s *TournamentService) RecalculateScores(ctx context.Context, id uuid.UUID) (*model.Leaderboard, error) {
	logger := zerolog.Ctx(ctx)

	var (
		t      *model.Tournament
		actual *model.Bracket
		lb     *model.Leaderboard
		err    error
	)
	for attempt := 1; ; attempt++ {
		t, actual, lb, err = s.scoreOnce(ctx, id)
		if !errors.Is(err, repository.ErrStaleScores) {
			break
		}
		if attempt == scoreAttempts {
			return nil, errs.NewConflictError("Brackets changed during recalculation, try again", true, errs.Code("SCORES_STALE"))
		}
		logger.Info().
			Str("tournament_id", id.String()).
			Int("attempt", attempt).
			Msg("brackets changed while scoring, retrying")
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, lb); err != nil {
		logger.Warn().Err(err).Str("tournament_id", id.String()).Msg("failed to cache leaderboard")
	}

	logger.Info().
		Str("event", "scores_recalculated").
		Str("tournament_id", id.String()).
		Int("brackets", len(lb.Entries)).
		Msg("scores recalculated")

	if _, decided := actual.Rounds.Champion(); decided {
		claimed, err := s.tournaments.ClaimResultsAnnouncement(ctx, id, actual.Version)
		switch {
		case err != nil:
			logger.Error().Err(err).Str("tournament_id", id.String()).Msg("failed to claim results announcement")
		case claimed:
			s.announceResults(ctx, t, lb.Entries)
		}
	}
	return lb, nil
}

// scoreOnce reads the current brackets, scores them and saves the result.
func (s *TournamentService) scoreOnce(ctx context.Context, id uuid.UUID) (*model.Tournament, *model.Bracket, *model.Leaderboard, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	actual, err := s.brackets.GetActual(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	predictions, err := s.brackets.ListPredictions(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	run := model.ScoreRun{
		TournamentID:  id,
		ActualVersion: actual.Version,
		Scores:        make([]model.BracketScore, 0, len(predictions)),
	}
	entries := make([]bracket.Entry, 0, len(predictions))

	for _, p := range predictions {
		res, err := bracket.Score(actual.Rounds, p.Rounds, t.PointSystem, t.CorrectScoreBonus)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to score bracket %s: %w", p.ID, err)
		}

		run.Scores = append(run.Scores, model.BracketScore{BracketID: p.ID, Version: p.Version, Result: res})
		entries = append(entries, bracket.Entry{
			BracketID:   p.ID,
			UserID:      p.AuthorID,
			Username:    p.Username,
			Score:       res.Total,
			Correct:     res.Correct,
			SubmittedAt: p.SubmittedAt,
		})
	}

	if err := s.brackets.SaveScores(ctx, run); err != nil {
		return nil, nil, nil, err
	}

	return t, actual, &model.Leaderboard{
		TournamentID: id,
		Entries:      bracket.Rank(entries),
		GeneratedAt:  s.now().UTC(),
	}, nil
}

// announceResults enqueues a results email for every leader. Failures are
// logged; the scores are already saved.
func (s *TournamentService) announceResults(ctx context.Context, t *model.Tournament, ranked []bracket.Entry) {
	logger := zerolog.Ctx(ctx)
	leaders := bracket.Leaders(ranked)

	for _, leader := range leaders {
		var coLeaders []string
		for _, other := range leaders {
			if other.BracketID != leader.BracketID {
				coLeaders = append(coLeaders, other.Username)
			}
		}

		task, err := job.NewTournamentResultsEmailTask(job.TournamentResultsPayload{
			TournamentID:   t.ID.String(),
			TournamentName: t.Name,
			UserID:         leader.UserID,
			Username:       leader.Username,
			Position:       leader.Position,
			Score:          leader.Score,
			CorrectPicks:   leader.Correct,
			CoLeaders:      coLeaders,
			WinnerReward:   t.WinnerReward,
			LoserForfeit:   t.LoserForfeit,
		})
		if err == nil {
			err = s.jobs.Enqueue(ctx, task)
		}
		if err != nil {
			logger.Error().Err(err).
				Str("tournament_id", t.ID.String()).
				Str("user_id", leader.UserID).
				Msg("failed to enqueue results email")
		}
	}
}

// Leaderboard returns the cached leaderboard, or ranks the stored scores on
// a miss.
func (s *TournamentService) Leaderboard(ctx context.Context, id uuid.UUID) (*model.Leaderboard, error) {
	logger := zerolog.Ctx(ctx)

	lb, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Str("tournament_id", id.String()).Msg("leaderboard cache unavailable")
	}
	if ok {
		return lb, nil
	}

	if _, err := s.tournaments.GetByID(ctx, id); err != nil {
		return nil, err
	}
	predictions, err := s.brackets.ListPredictions(ctx, id)
	if err != nil {
		return nil, err
	}

	entries := make([]bracket.Entry, 0, len(predictions))
	for _, p := range predictions {
		entries = append(entries, bracket.Entry{
			BracketID:   p.ID,
			UserID:      p.AuthorID,
			Username:    p.Username,
			Score:       p.Score,
			Correct:     p.CorrectPicks,
			SubmittedAt: p.SubmittedAt,
		})
	}

	lb = &model.Leaderboard{
		TournamentID: id,
		Entries:      bracket.Rank(entries),
		GeneratedAt:  s.now().UTC(),
	}
	if err := s.cache.Set(ctx, lb); err != nil {
		logger.Warn().Err(err).Str("tournament_id", id.String()).Msg("failed to cache leaderboard")
	}
	return lb, nil
}

func (s *TournamentService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("tournament_id", id.String()).Msg("failed to invalidate leaderboard")
	}
}

// scheduleRecalculation enqueues a score recalculation. The bracket change
// is already saved, so a failure is logged and the author can recalculate
// by hand.
func (s *TournamentService) scheduleRecalculation(ctx context.Context, id uuid.UUID) {
	task, err := job.NewRecalculateTask(id)
	if err == nil {
		err = s.jobs.Enqueue(ctx, task)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("tournament_id", id.String()).Msg("failed to schedule recalculation")
	}
}

// bracketError turns bracket validation failures into 400 responses.
func bracketError(err error) error {
	code, message, field := "", "", "rounds"

	switch {
	case errors.Is(err, bracket.ErrShape):
		code, message = "INVALID_BRACKET_SHAPE", "Bracket has the wrong shape"
	case errors.Is(err, bracket.ErrProgression):
		code, message = "INVALID_BRACKET_PROGRESSION", "Bracket picks must advance from the previous round"
	case errors.Is(err, bracket.ErrUnknownTeam):
		code, message = "UNKNOWN_TEAM", "Bracket references a team outside the tournament"
	case errors.Is(err, bracket.ErrPointSystem):
		code, message = "INVALID_POINT_SYSTEM", "Point system must have exactly 4 non-negative tiers"
		field = "point_system"
	default:
		return err
	}

	return errs.NewBadRequestError(message, true, errs.Code(code), []errs.FieldError{
		{Field: field, Error: err.Error()},
	}, nil)
}

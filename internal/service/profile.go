package service

import (
	"context"

	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/deppfellow/pickboard/internal/lib/job"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ProfileService struct {
	profiles ProfileRepository
	notes    NoteRepository
	jobs     Enqueuer
}

func NewProfileService(profiles ProfileRepository, notes NoteRepository, jobs Enqueuer) *ProfileService {
	return &ProfileService{profiles: profiles, notes: notes, jobs: jobs}
}

// EnsureProfile returns the caller's profile, creating it on first use.
// A new profile schedules a welcome email; failing to enqueue it does not
// fail the request.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, created, err := s.profiles.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !created {
		return profile, nil
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().Str("user_id", userID).Msg("created profile")

	task, err := job.NewWelcomeEmailTask(job.WelcomeEmailPayload{
		UserID:   profile.ID,
		Username: profile.Username,
		JoinedAt: profile.CreatedAt,
	})
	if err == nil {
		err = s.jobs.Enqueue(ctx, task)
	}
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to enqueue welcome email")
	}

	return profile, nil
}

func (s *ProfileService) GetMe(ctx context.Context, userID string) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

func (s *ProfileService) UpdateMe(ctx context.Context, userID string, update model.UpdateProfile) (*model.Profile, error) {
	return s.profiles.Update(ctx, userID, update)
}

// GetProfile returns a profile with that user's notes, newest first.
func (s *ProfileService) GetProfile(ctx context.Context, userID string, page model.Page) (*model.ProfilePage, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.List(ctx, model.NoteFilter{AuthorID: userID, Page: page})
	if err != nil {
		return nil, err
	}

	return &model.ProfilePage{Profile: *profile, Notes: notes}, nil
}

// RefreshRatings recomputes every profile's rating from its notes'
// reactions.
func (s *ProfileService) RefreshRatings(ctx context.Context) (int64, error) {
	n, err := s.profiles.RefreshRatings(ctx)
	if err != nil {
		return 0, err
	}
	zerolog.Ctx(ctx).Info().Int64("profiles", n).Msg("refreshed ratings")
	return n, nil
}

// Reactors lists the profiles that left the given reaction on a note.
func (s *ProfileService) Reactors(ctx context.Context, noteID uuid.UUID, kind model.ReactionKind) ([]model.ProfileSummary, error) {
	ok, err := s.notes.Exists(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NewNotFoundError("Note not found", true, errs.Code("NOTE_NOT_FOUND"))
	}
	return s.profiles.ListReactors(ctx, noteID, kind)
}

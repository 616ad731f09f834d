package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/deppfellow/pickboard/internal/lib/job"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfile(t *testing.T) {
	ctx := context.Background()
	profile := &model.Profile{ID: "user_1", Username: "user_1", Base: model.Base{CreatedAt: time.Now()}}

	t.Run("existing profile sends nothing", func(t *testing.T) {
		profiles, jobs := &mockProfiles{}, &mockEnqueuer{}
		svc := NewProfileService(profiles, &mockNotes{}, jobs)
		profiles.On("Ensure", ctx, "user_1").Return(profile, false, nil)

		got, err := svc.EnsureProfile(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
		jobs.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("new profile enqueues welcome email", func(t *testing.T) {
		profiles, jobs := &mockProfiles{}, &mockEnqueuer{}
		svc := NewProfileService(profiles, &mockNotes{}, jobs)
		profiles.On("Ensure", ctx, "user_1").Return(profile, true, nil)
		jobs.On("Enqueue", ctx, taskOfType(job.TaskWelcomeEmail)).Return(nil).Once()

		_, err := svc.EnsureProfile(ctx, "user_1")
		require.NoError(t, err)
		jobs.AssertExpectations(t)
	})

	t.Run("enqueue failure does not fail the request", func(t *testing.T) {
		profiles, jobs := &mockProfiles{}, &mockEnqueuer{}
		svc := NewProfileService(profiles, &mockNotes{}, jobs)
		profiles.On("Ensure", ctx, "user_1").Return(profile, true, nil)
		jobs.On("Enqueue", ctx, mock.Anything).Return(errors.New("redis down"))

		got, err := svc.EnsureProfile(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	profiles, notes := &mockProfiles{}, &mockNotes{}
	svc := NewProfileService(profiles, notes, &mockEnqueuer{})

	profile := &model.Profile{ID: "user_2", Username: "bob", Rating: 3}
	page := model.NewPage(10, 0)
	profiles.On("GetByID", ctx, "user_2").Return(profile, nil)
	notes.On("List", ctx, model.NoteFilter{AuthorID: "user_2", Page: page}).
		Return([]model.Note{{Content: "hi"}}, nil)

	got, err := svc.GetProfile(ctx, "user_2", page)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Profile.Username)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "hi", got.Notes[0].Content)
}

func TestReactors(t *testing.T) {
	ctx := context.Background()
	profiles, notes := &mockProfiles{}, &mockNotes{}
	svc := NewProfileService(profiles, notes, &mockEnqueuer{})

	missing, present := uuid.New(), uuid.New()
	notes.On("Exists", ctx, missing).Return(false, nil)
	notes.On("Exists", ctx, present).Return(true, nil)
	profiles.On("ListReactors", ctx, present, model.ReactionLike).
		Return([]model.ProfileSummary{{ID: "user_3", Username: "carol"}}, nil)

	_, err := svc.Reactors(ctx, missing, model.ReactionLike)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "NOTE_NOT_FOUND", httpErr.Code)

	got, err := svc.Reactors(ctx, present, model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, "carol", got[0].Username)
}

func TestReactRejectsUnknownKind(t *testing.T) {
	notes := &mockNotes{}
	svc := NewNoteService(notes)

	_, err := svc.React(context.Background(), uuid.New(), "user_1", model.ReactionKind("love"))
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "INVALID_REACTION", httpErr.Code)
	notes.AssertNotCalled(t, "ToggleReaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNoteListFilter(t *testing.T) {
	ctx := context.Background()
	notes := &mockNotes{}
	svc := NewNoteService(notes)

	page := model.NewPage(0, 0)
	notes.On("List", ctx, model.NoteFilter{Sort: model.SortMostLikes, Page: page}).Return([]model.Note{}, nil)

	got, err := svc.List(ctx, "", model.SortMostLikes, page)
	require.NoError(t, err)
	assert.Empty(t, got)
	notes.AssertExpectations(t)
}

package repository

import (
	"context"
	"testing"

	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleReaction(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	seedProfiles(t, pool, "author", "alice", "bob")

	notes := NewNoteRepository(pool)
	note, err := notes.Create(ctx, "author", "who wins the final?")
	require.NoError(t, err)

	steps := []struct {
		name   string
		user   string
		kind   model.ReactionKind
		want   model.ReactionCounts
		rating int
	}{
		{"first like", "alice", model.ReactionLike, model.ReactionCounts{Likes: 1}, 1},
		{"dislike replaces like", "alice", model.ReactionDislike, model.ReactionCounts{Dislikes: 1}, -1},
		{"repeated dislike removes it", "alice", model.ReactionDislike, model.ReactionCounts{}, 0},
		{"like again", "alice", model.ReactionLike, model.ReactionCounts{Likes: 1}, 1},
		{"second user dislikes", "bob", model.ReactionDislike, model.ReactionCounts{Likes: 1, Dislikes: 1}, 0},
	}
	for _, step := range steps {
		counts, err := notes.ToggleReaction(ctx, note.ID, step.user, step.kind)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.want, counts, step.name)
		assert.Equal(t, step.rating, rating(t, pool, "author"), step.name)
	}

	likers, err := NewProfileRepository(pool).ListReactors(ctx, note.ID, model.ReactionLike)
	require.NoError(t, err)
	require.Len(t, likers, 1)
	assert.Equal(t, "alice", likers[0].ID)

	got, err := notes.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, got.LikedBy)
	assert.Equal(t, []string{"bob"}, got.DislikedBy)

	_, err = notes.ToggleReaction(ctx, uuid.New(), "alice", model.ReactionLike)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestRatingFollowsReactions(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	seedProfiles(t, pool, "author", "alice", "bob")

	notes := NewNoteRepository(pool)
	profiles := NewProfileRepository(pool)

	first, err := notes.Create(ctx, "author", "first")
	require.NoError(t, err)
	second, err := notes.Create(ctx, "author", "second")
	require.NoError(t, err)

	for _, r := range []struct {
		note uuid.UUID
		user string
		kind model.ReactionKind
	}{
		{first.ID, "alice", model.ReactionLike},
		{first.ID, "bob", model.ReactionLike},
		{second.ID, "alice", model.ReactionDislike},
	} {
		_, err := notes.ToggleReaction(ctx, r.note, r.user, r.kind)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, rating(t, pool, "author"))

	_, err = pool.Exec(ctx, `UPDATE profiles SET rating = 99 WHERE id = 'author'`)
	require.NoError(t, err)

	updated, err := profiles.RefreshRatings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
	assert.Equal(t, 1, rating(t, pool, "author"))

	updated, err = profiles.RefreshRatings(ctx)
	require.NoError(t, err)
	assert.Zero(t, updated)

	// Dropping the liked note leaves only the dislike.
	require.NoError(t, notes.Delete(ctx, first.ID, "author"))
	assert.Equal(t, -1, rating(t, pool, "author"))
}

func TestDeleteNoteOfAnotherUser(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	seedProfiles(t, pool, "author", "intruder")

	notes := NewNoteRepository(pool)
	note, err := notes.Create(ctx, "author", "mine")
	require.NoError(t, err)

	err = notes.Delete(ctx, note.ID, "intruder")
	require.ErrorIs(t, err, pgx.ErrNoRows)

	exists, err := notes.Exists(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, notes.Delete(ctx, note.ID, "author"))
	exists, err = notes.Exists(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListNotesOrder(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	seedProfiles(t, pool, "author", "other", "alice", "bob", "carol")

	notes := NewNoteRepository(pool)
	create := func(author, content string) uuid.UUID {
		n, err := notes.Create(ctx, author, content)
		require.NoError(t, err)
		return n.ID
	}
	n1 := create("author", "one")
	n2 := create("author", "two")
	n3 := create("author", "three")
	create("other", "elsewhere")

	for _, r := range []struct {
		note uuid.UUID
		user string
		kind model.ReactionKind
	}{
		{n1, "alice", model.ReactionLike},
		{n1, "bob", model.ReactionLike},
		{n3, "carol", model.ReactionLike},
		{n3, "alice", model.ReactionDislike},
		{n3, "bob", model.ReactionDislike},
	} {
		_, err := notes.ToggleReaction(ctx, r.note, r.user, r.kind)
		require.NoError(t, err)
	}

	_, err := notes.AddComment(ctx, n2, "alice", "nice")
	require.NoError(t, err)

	ids := func(list []model.Note) []uuid.UUID {
		out := make([]uuid.UUID, len(list))
		for i, n := range list {
			out[i] = n.ID
		}
		return out
	}

	tests := []struct {
		sort model.NoteSort
		want []uuid.UUID
	}{
		{model.SortCreatedAt, []uuid.UUID{n3, n2, n1}},
		{model.SortMostLikes, []uuid.UUID{n1, n3, n2}},
		{model.SortMostDislikes, []uuid.UUID{n3, n2, n1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			list, err := notes.List(ctx, model.NoteFilter{AuthorID: "author", Sort: tt.sort})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(list))
		})
	}

	all, err := notes.List(ctx, model.NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	page, err := notes.List(ctx, model.NoteFilter{AuthorID: "author", Page: model.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, n2, page[0].ID)
	require.Len(t, page[0].Comments, 1)
	assert.Equal(t, "nice", page[0].Comments[0].Content)
}

func TestAddCommentToMissingNote(t *testing.T) {
	pool := openTestPool(t)
	seedProfiles(t, pool, "alice")

	_, err := NewNoteRepository(pool).AddComment(context.Background(), uuid.New(), "alice", "hello")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		want          Page
	}{
		{"defaults", 0, 0, Page{Limit: DefaultPageLimit}},
		{"negative limit", -5, 10, Page{Limit: DefaultPageLimit, Offset: 10}},
		{"clamped", 1000, 0, Page{Limit: MaxPageLimit}},
		{"negative offset", 20, -3, Page{Limit: 20}},
		{"passthrough", 200, 400, Page{Limit: 200, Offset: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPage(tt.limit, tt.offset))
		})
	}
}

func TestParseNoteSort(t *testing.T) {
	assert.Equal(t, SortCreatedAt, ParseNoteSort(""))
	assert.Equal(t, SortCreatedAt, ParseNoteSort("created_at"))
	assert.Equal(t, SortMostLikes, ParseNoteSort("most_likes"))
	assert.Equal(t, SortMostDislikes, ParseNoteSort("most_dislikes"))
	assert.Equal(t, SortCreatedAt, ParseNoteSort("MOST_LIKES"))
}

func TestReactionKindValid(t *testing.T) {
	assert.True(t, ReactionLike.Valid())
	assert.True(t, ReactionDislike.Valid())
	assert.False(t, ReactionKind("love").Valid())
}

func TestTournamentDetailTeams(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	d := &TournamentDetail{Teams: []Team{{ID: a, Name: "a"}, {ID: b, Name: "b"}}}

	assert.Equal(t, []uuid.UUID{a, b}, d.TeamIDs())

	set := d.TeamSet()
	assert.Len(t, set, 2)
	assert.Contains(t, set, b)
}

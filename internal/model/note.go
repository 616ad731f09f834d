package model

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID             uuid.UUID `json:"id" db:"id"`
	AuthorID       string    `json:"author_id" db:"author_id"`
	AuthorUsername string    `json:"author_username" db:"author_username"`
	Content        string    `json:"content" db:"content"`
	Likes          int       `json:"likes" db:"likes"`
	Dislikes       int       `json:"dislikes" db:"dislikes"`
	LikedBy        []string  `json:"liked_by" db:"liked_by"`
	DislikedBy     []string  `json:"disliked_by" db:"disliked_by"`
	Comments       []Comment `json:"comments" db:"-"`
	Base
}

type Comment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	NoteID         uuid.UUID `json:"note_id" db:"note_id"`
	AuthorID       string    `json:"author_id" db:"author_id"`
	AuthorUsername string    `json:"author_username" db:"author_username"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// ReactionCounts is returned after every like/dislike toggle.
type ReactionCounts struct {
	Likes    int `json:"likes" db:"likes"`
	Dislikes int `json:"dislikes" db:"dislikes"`
}

// NoteSort names a listing order. The zero value sorts newest first.
type NoteSort string

const (
	SortCreatedAt    NoteSort = "created_at"
	SortMostLikes    NoteSort = "most_likes"
	SortMostDislikes NoteSort = "most_dislikes"
)

// ParseNoteSort falls back to SortCreatedAt for unknown values.
func ParseNoteSort(s string) NoteSort {
	switch NoteSort(s) {
	case SortMostLikes, SortMostDislikes:
		return NoteSort(s)
	default:
		return SortCreatedAt
	}
}

// NoteFilter selects notes for a listing. An empty AuthorID lists every
// author.
type NoteFilter struct {
	AuthorID string
	Sort     NoteSort
	Page     Page
}

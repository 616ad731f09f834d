package repository

import (
	"github.com/deppfellow/pickboard/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Profile    *ProfileRepository
	Note       *NoteRepository
	Tournament *TournamentRepository
	Bracket    *BracketRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Profile:    NewProfileRepository(s.DB.Pool),
		Note:       NewNoteRepository(s.DB.Pool),
		Tournament: NewTournamentRepository(s.DB.Pool),
		Bracket:    NewBracketRepository(s.DB.Pool),
	}
}

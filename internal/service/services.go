package service

import (
	"github.com/deppfellow/pickboard/internal/lib/cache"
	"github.com/deppfellow/pickboard/internal/lib/job"
	"github.com/deppfellow/pickboard/internal/repository"
	"github.com/deppfellow/pickboard/internal/server"
)

type Services struct {
	Auth       *AuthService
	Job        *job.JobService
	Profile    *ProfileService
	Note       *NoteService
	Tournament *TournamentService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)
	leaderboards := cache.NewLeaderboardCache(s.Redis)

	return &Services{
		Job:     s.Job,
		Auth:    authService,
		Profile: NewProfileService(repos.Profile, repos.Note, s.Job),
		Note:    NewNoteService(repos.Note),
		Tournament: NewTournamentService(
			repos.Tournament,
			repos.Bracket,
			leaderboards,
			s.Job,
			s.Config.Scoring.DefaultPoints,
		),
	}, nil
}

package handler

import (
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/deppfellow/pickboard/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health     *HealthHandler
	OpenAPI    *OpenAPIHandler
	Profile    *ProfileHandler
	Note       *NoteHandler
	Tournament *TournamentHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		OpenAPI:    NewOpenAPIHandler(s),
		Profile:    NewProfileHandler(s, services.Profile),
		Note:       NewNoteHandler(s, services.Note, services.Profile),
		Tournament: NewTournamentHandler(s, services.Tournament),
	}
}

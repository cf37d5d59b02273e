package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atarasov/NoteVault/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the vault API.
//
// Routes:
//
//	POST   /api/password    → set the session password
//	GET    /api/notes       → list notes visible under the current password
//	POST   /api/notes       → encrypt and store a note
//	GET    /api/notes/{id}  → fetch one note by ID
//	DELETE /api/notes/{id}  → delete one note by ID
//	DELETE /api/notes       → delete all notes
//
// Requests with bodies must carry Content-Type: application/json.
func NewRouter(notes *NotesHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/password", notes.SetPassword)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notes.List)
			r.Post("/", notes.Add)
			r.Delete("/", notes.Clear)
			r.Get("/{id}", notes.Get)
			r.Delete("/{id}", notes.Delete)
		})
	})

	return r
}

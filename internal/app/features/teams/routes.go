// internal/app/features/teams/routes.go
package teams

import (
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the team endpoints. Everything requires a signed-in
// user; executive checks happen per operation in the store.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/mine", h.ServeMine)
	r.Post("/join-by-short-id/{shortID}", h.HandleJoinByShortID)

	r.Get("/{teamID}", h.ServeGet)
	r.Delete("/{teamID}", h.HandleDelete)
	r.Post("/{teamID}/join", h.HandleJoin)
	r.Post("/{teamID}/promote", h.HandlePromote)
	r.Post("/{teamID}/leave", h.HandleLeave)
	r.Post("/{teamID}/kick", h.HandleKick)

	return r
}

// internal/app/features/session/routes.go
package session

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the session endpoints. Sign-in is the only anonymous
// mutation in the whole API.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/sign-in", h.HandleSignIn)
	r.Post("/sign-out", h.HandleSignOut)
	r.Get("/me", h.ServeMe)
	return r
}

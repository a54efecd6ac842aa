// internal/app/features/todos/routes.go
package todos

import (
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the todo endpoints under /projects/{projectID}/todos.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleAdd)
	r.Get("/", h.ServeList)
	r.Get("/proposed", h.ServeProposed)
	r.Post("/reorder", h.HandleReorder)

	r.Patch("/{todoID}", h.HandleUpdate)
	r.Delete("/{todoID}", h.HandleDelete)
	r.Post("/{todoID}/assign", h.HandleAssign)
	r.Post("/{todoID}/approve", h.HandleApprove)

	return r
}

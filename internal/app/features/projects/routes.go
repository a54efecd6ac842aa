// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the project endpoints. Everything requires a signed-in
// user; per-project access checks happen in the handlers through the
// Guard.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/{projectID}", h.ServeGet)
	r.Delete("/{projectID}", h.HandleDelete)

	r.Post("/{projectID}/statuses", h.HandleAddStatus)
	r.Post("/{projectID}/statuses/reorder", h.HandleReorderStatuses)
	r.Patch("/{projectID}/statuses/{statusID}", h.HandleUpdateStatus)
	r.Delete("/{projectID}/statuses/{statusID}", h.HandleDeleteStatus)

	r.Post("/{projectID}/budget/increase", h.HandleIncreaseBudget)
	r.Post("/{projectID}/budget/spend", h.HandleSpendBudget)

	return r
}

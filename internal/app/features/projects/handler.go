// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"

	projectstore "github.com/dalemusser/crewdeck/internal/app/store/projects"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler provides the project endpoints: lifecycle, the ordered
// status pipeline, and the budget ledger. Reading a project needs
// standard access; every mutation below needs executive access, which
// the Guard answers from the project_access index before the store is
// touched.
type Handler struct {
	Projects *projectstore.Store
	Guard    *authz.Guard
	Log      *zap.Logger
}

func NewHandler(projects *projectstore.Store, guard *authz.Guard, logger *zap.Logger) *Handler {
	return &Handler{Projects: projects, Guard: guard, Log: logger}
}

// HandleCreate creates a project under a team. The store enforces that
// the caller is an executive of that team; access rows for the new
// project do not exist yet, so the Guard cannot be used here.
// POST /projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createProjectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	teamID, err := primitive.ObjectIDFromHex(req.TeamID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed team id"))
		return
	}
	project, err := h.Projects.Create(r.Context(), teamID, callerID, req.Name, req.Description)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toProjectResponse(project))
}

// ServeGet returns one project; any team member may read it.
// GET /projects/{projectID}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireStandard(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	project, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toProjectResponse(project))
}

// HandleDelete deletes the project and everything hanging off it.
// DELETE /projects/{projectID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Projects.Delete(r.Context(), projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleAddStatus appends a stage to the pipeline.
// POST /projects/{projectID}/statuses
func (h *Handler) HandleAddStatus(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	status, err := h.Projects.AddStatus(r.Context(), projectID, req.Name, req.Color)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toStatusResponse(status))
}

// HandleUpdateStatus renames or recolors a stage.
// PATCH /projects/{projectID}/statuses/{statusID}
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	statusID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "statusID"))
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed status id"))
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Projects.UpdateStatus(r.Context(), projectID, statusID, req.Name, req.Color); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "updated"})
}

// HandleDeleteStatus removes a stage; todos sitting in it are deleted
// with it.
// DELETE /projects/{projectID}/statuses/{statusID}
func (h *Handler) HandleDeleteStatus(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	statusID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "statusID"))
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed status id"))
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Projects.DeleteStatus(r.Context(), projectID, statusID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleReorderStatuses persists a new stage order.
// POST /projects/{projectID}/statuses/reorder
func (h *Handler) HandleReorderStatuses(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	var req reorderRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	orderedIDs, ok := parseIDs(req.OrderedIDs)
	if !ok {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed status id in ordered_ids"))
		return
	}
	if err := h.Projects.ReorderStatuses(r.Context(), projectID, orderedIDs); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// HandleIncreaseBudget adds funds to the available pool.
// POST /projects/{projectID}/budget/increase
func (h *Handler) HandleIncreaseBudget(w http.ResponseWriter, r *http.Request) {
	h.budgetOp(w, r, h.Projects.IncreaseBudget)
}

// HandleSpendBudget moves funds from available to spent; a spend that
// exceeds the available pool is rejected whole.
// POST /projects/{projectID}/budget/spend
func (h *Handler) HandleSpendBudget(w http.ResponseWriter, r *http.Request) {
	h.budgetOp(w, r, h.Projects.SpendBudget)
}

func (h *Handler) budgetOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, projectID primitive.ObjectID, amount float64) error) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	var req amountRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := op(r.Context(), projectID, req.Amount); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	project, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]float64{
		"budget_available": project.BudgetAvailable,
		"budget_spent":     project.BudgetSpent,
	})
}

func (h *Handler) callerAndProject(w http.ResponseWriter, r *http.Request) (callerID, projectID primitive.ObjectID, ok bool) {
	callerID, ok = authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed project id"))
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return callerID, projectID, true
}

// internal/app/features/todos/handler.go
package todos

import (
	"net/http"

	todostore "github.com/dalemusser/crewdeck/internal/app/store/todos"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler provides the todo endpoints, mounted under a project.
// Adding and listing need standard access; updating, deleting,
// reordering, assigning, and approving are executive operations.
type Handler struct {
	Todos *todostore.Store
	Guard *authz.Guard
	Log   *zap.Logger
}

func NewHandler(todos *todostore.Store, guard *authz.Guard, logger *zap.Logger) *Handler {
	return &Handler{Todos: todos, Guard: guard, Log: logger}
}

// HandleAdd creates a todo. Whether it goes live or enters the
// proposed state is decided by the store from the caller's standing.
// POST /projects/{projectID}/todos
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireStandard(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	var req addTodoRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	statusID, err := optionalID(req.StatusID, "status id")
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	assigneeID, err := optionalID(req.AssigneeID, "assignee id")
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	todo, err := h.Todos.Add(r.Context(), projectID, callerID, req.Name, req.Description, statusID, assigneeID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toTodoResponse(todo))
}

// ServeList returns the project's todos in their stored order.
// GET /projects/{projectID}/todos
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireStandard(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	todos, err := h.Todos.ListForProject(r.Context(), projectID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"todos": toTodoResponses(todos)})
}

// ServeProposed returns the todos still awaiting approval.
// GET /projects/{projectID}/todos/proposed
func (h *Handler) ServeProposed(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireStandard(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	todos, err := h.Todos.ListProposed(r.Context(), projectID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"todos": toTodoResponses(todos)})
}

// HandleUpdate rewrites a todo's fields.
// PATCH /projects/{projectID}/todos/{todoID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, todoID, ok := h.callerProjectTodo(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	var req updateTodoRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	statusID, err := primitive.ObjectIDFromHex(req.StatusID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed status id"))
		return
	}
	assigneeID, err := optionalID(req.AssigneeID, "assignee id")
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Todos.Update(r.Context(), projectID, todoID, req.Name, req.Description, statusID, assigneeID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "updated"})
}

// HandleDelete removes a todo.
// DELETE /projects/{projectID}/todos/{todoID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, todoID, ok := h.callerProjectTodo(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Todos.Delete(r.Context(), projectID, todoID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleReorder persists a new todo order.
// POST /projects/{projectID}/todos/reorder
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
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
	orderedIDs := make([]primitive.ObjectID, 0, len(req.OrderedIDs))
	for _, raw := range req.OrderedIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed todo id in ordered_ids"))
			return
		}
		orderedIDs = append(orderedIDs, id)
	}
	if err := h.Todos.Reorder(r.Context(), projectID, orderedIDs); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// HandleAssign points a todo at a team member.
// POST /projects/{projectID}/todos/{todoID}/assign
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, todoID, ok := h.callerProjectTodo(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	var req assignRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	assigneeID, err := primitive.ObjectIDFromHex(req.AssigneeID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed assignee id"))
		return
	}
	if err := h.Todos.Assign(r.Context(), projectID, todoID, assigneeID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// HandleApprove flips a proposed todo to approved.
// POST /projects/{projectID}/todos/{todoID}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	callerID, projectID, todoID, ok := h.callerProjectTodo(w, r)
	if !ok {
		return
	}
	if err := h.Guard.RequireExecutive(r.Context(), callerID, projectID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Todos.Approve(r.Context(), todoID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "approved"})
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

func (h *Handler) callerProjectTodo(w http.ResponseWriter, r *http.Request) (callerID, projectID, todoID primitive.ObjectID, ok bool) {
	callerID, projectID, ok = h.callerAndProject(w, r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, primitive.NilObjectID, false
	}
	todoID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "todoID"))
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed todo id"))
		return primitive.NilObjectID, primitive.NilObjectID, primitive.NilObjectID, false
	}
	return callerID, projectID, todoID, true
}

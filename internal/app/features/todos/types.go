// internal/app/features/todos/types.go
package todos

import (
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type addTodoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StatusID    string `json:"status_id"`
	AssigneeID  string `json:"assignee_id"`
}

type updateTodoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StatusID    string `json:"status_id"`
	AssigneeID  string `json:"assignee_id"`
}

type assignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type reorderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

type todoResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StatusID    string `json:"status_id"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	Approved    bool   `json:"approved"`
}

func toTodoResponse(t models.Todo) todoResponse {
	out := todoResponse{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Description: t.Description,
		StatusID:    t.StatusID.Hex(),
		Approved:    t.Approved,
	}
	if t.AssigneeID != nil {
		out.AssigneeID = t.AssigneeID.Hex()
	}
	return out
}

func toTodoResponses(todos []models.Todo) []todoResponse {
	out := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, toTodoResponse(t))
	}
	return out
}

// optionalID decodes an optional hex id field: empty means absent.
func optionalID(raw, field string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperr.InvalidArgument("malformed " + field)
	}
	return &id, nil
}

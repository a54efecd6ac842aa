// internal/app/features/projects/types.go
package projects

import (
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createProjectRequest struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type statusRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type reorderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

type statusResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type projectResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	TodoStatuses    []statusResponse `json:"todo_statuses"`
	TodoIDs         []string         `json:"todo_ids"`
	BudgetAvailable float64          `json:"budget_available"`
	BudgetSpent     float64          `json:"budget_spent"`
}

func toProjectResponse(p models.Project) projectResponse {
	statuses := make([]statusResponse, 0, len(p.TodoStatuses))
	for _, st := range p.TodoStatuses {
		statuses = append(statuses, toStatusResponse(st))
	}
	todoIDs := make([]string, 0, len(p.TodoIDs))
	for _, id := range p.TodoIDs {
		todoIDs = append(todoIDs, id.Hex())
	}
	return projectResponse{
		ID:              p.ID.Hex(),
		Name:            p.Name,
		Description:     p.Description,
		TodoStatuses:    statuses,
		TodoIDs:         todoIDs,
		BudgetAvailable: p.BudgetAvailable,
		BudgetSpent:     p.BudgetSpent,
	}
}

func toStatusResponse(st models.TodoStatus) statusResponse {
	return statusResponse{ID: st.ID.Hex(), Name: st.Name, Color: st.Color}
}

func parseIDs(raw []string) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

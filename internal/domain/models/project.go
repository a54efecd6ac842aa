// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TodoStatus is a pipeline stage embedded in a project, not a
// standalone collection.
type TodoStatus struct {
	ID    primitive.ObjectID `bson:"id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Color string             `bson:"color" json:"color"`
}

// Project is a budgeted unit of work owned by exactly one team
// (via Team.ProjectIDs). TodoStatuses and TodoIDs are ordered;
// a project always has at least one status.
type Project struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Description  string               `bson:"description" json:"description"`
	TodoStatuses []TodoStatus         `bson:"todo_statuses" json:"todo_statuses"`
	TodoIDs      []primitive.ObjectID `bson:"todo_ids" json:"todo_ids"`

	BudgetAvailable float64 `bson:"budget_available" json:"budget_available"`
	BudgetSpent     float64 `bson:"budget_spent" json:"budget_spent"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasStatus reports whether statusID is one of the project's stages.
func (p Project) HasStatus(statusID primitive.ObjectID) bool {
	for _, s := range p.TodoStatuses {
		if s.ID == statusID {
			return true
		}
	}
	return false
}

// HasTodo reports whether todoID is linked into the project.
func (p Project) HasTodo(todoID primitive.ObjectID) bool {
	return containsID(p.TodoIDs, todoID)
}

// internal/domain/models/todo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Todo is a unit of work inside a project.
//
// StatusID must always be one of the owning project's todo_statuses
// ids, and AssigneeID (when set) must be a member of the owning team.
// Approved is fixed at creation time by the creator's executive
// standing and can only ever move false -> true.
type Todo struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	StatusID    primitive.ObjectID  `bson:"status_id" json:"status_id"`
	AssigneeID  *primitive.ObjectID `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	Approved    bool                `bson:"approved" json:"approved"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

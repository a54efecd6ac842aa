// internal/domain/models/projectaccess.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Access levels stored on ProjectAccess rows.
const (
	AccessStandard  = "standard"
	AccessExecutive = "executive"
)

// ProjectAccess is the authoritative (user, project) access index.
// Exactly one document per (user_id, project_id), maintained alongside
// every membership and project mutation so authorization is a single
// indexed lookup instead of a scan over the user's teams.
type ProjectAccess struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	TeamID    primitive.ObjectID `bson:"team_id" json:"team_id"`
	Level     string             `bson:"level" json:"level"` // "standard" | "executive"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the verified identity everything else consumes.
//
// NOTE:
//   - Team membership is not embedded on User.
//     Teams carry member_ids/exec_member_ids; the project_access
//     collection answers "what can this user touch".
type User struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email   string             `bson:"email" json:"email"`
	EmailCI string             `bson:"email_ci" json:"email_ci"` // lowercase, diacritics-stripped

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a named group of users that owns projects.
//
// Invariants:
//   - ExecMemberIDs is always a subset of MemberIDs.
//   - A team never has zero executives: when the sole executive leaves,
//     the team document itself is deleted.
//
// ProjectIDs is ordered; it is the only edge between a team and its
// projects (projects carry no back-reference). ShortID is a 6-letter
// globally unique alias used for low-friction join links.
type Team struct {
	ID            primitive.ObjectID   `bson:"_id" json:"id"`
	ShortID       string               `bson:"short_id" json:"short_id"`
	Name          string               `bson:"name" json:"name"`
	NameCI        string               `bson:"name_ci" json:"name_ci"`
	MemberIDs     []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	ExecMemberIDs []primitive.ObjectID `bson:"exec_member_ids" json:"exec_member_ids"`
	ProjectIDs    []primitive.ObjectID `bson:"project_ids" json:"project_ids"`
	EventIDs      []primitive.ObjectID `bson:"event_ids" json:"event_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID is in the team's membership.
func (t Team) HasMember(userID primitive.ObjectID) bool {
	return containsID(t.MemberIDs, userID)
}

// HasExecutive reports whether userID is one of the team's executives.
func (t Team) HasExecutive(userID primitive.ObjectID) bool {
	return containsID(t.ExecMemberIDs, userID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// internal/app/features/teams/types.go
package teams

import (
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

type memberRequest struct {
	MemberID string `json:"member_id"`
}

// teamResponse is the wire shape for a team; every ObjectID becomes an
// opaque hex string.
type teamResponse struct {
	ID            string   `json:"id"`
	ShortID       string   `json:"short_id"`
	Name          string   `json:"name"`
	MemberIDs     []string `json:"member_ids"`
	ExecMemberIDs []string `json:"exec_member_ids"`
	ProjectIDs    []string `json:"project_ids"`
	EventIDs      []string `json:"event_ids"`
}

func toTeamResponse(t models.Team) teamResponse {
	return teamResponse{
		ID:            t.ID.Hex(),
		ShortID:       t.ShortID,
		Name:          t.Name,
		MemberIDs:     hexIDs(t.MemberIDs),
		ExecMemberIDs: hexIDs(t.ExecMemberIDs),
		ProjectIDs:    hexIDs(t.ProjectIDs),
		EventIDs:      hexIDs(t.EventIDs),
	}
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

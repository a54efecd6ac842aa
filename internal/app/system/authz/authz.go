// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"net/http"

	accessstore "github.com/dalemusser/crewdeck/internal/app/store/access"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guard answers the only two authorization questions the core asks:
// does this user have standard access to this project, and do they
// have executive access. Both are a single indexed lookup against the
// project_access collection, computed fresh per request (no cache).
type Guard struct {
	access *accessstore.Store
}

func NewGuard(access *accessstore.Store) *Guard {
	return &Guard{access: access}
}

// RequireStandard succeeds when the user holds any access row for the
// project.
func (g *Guard) RequireStandard(ctx context.Context, userID, projectID primitive.ObjectID) error {
	level, err := g.access.Level(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if level == "" {
		return apperr.Forbidden("no access to project " + projectID.Hex())
	}
	return nil
}

// RequireExecutive succeeds only when the user's row carries the
// executive level.
func (g *Guard) RequireExecutive(ctx context.Context, userID, projectID primitive.ObjectID) error {
	level, err := g.access.Level(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if level != models.AccessExecutive {
		return apperr.Forbidden("executive access required for project " + projectID.Hex())
	}
	return nil
}

// UserCtx returns the current user's ObjectID and a found flag.
// ok=true guarantees a signed-in user with a well-formed id; a
// malformed id in the session fails closed.
func UserCtx(r *http.Request) (primitive.ObjectID, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}

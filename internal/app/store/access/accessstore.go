// internal/app/store/access/accessstore.go
package accessstore

import (
	"context"
	"time"

	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store maintains the project_access index: one row per
// (user, project), written by every membership/project mutation and
// read by the authorization guard. Rows are derived state — the teams
// collection stays authoritative — so every mutator here is idempotent
// upsert/delete and safe to replay.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("project_access")}
}

// Level returns the access level for (userID, projectID), or "" when
// no row exists.
func (s *Store) Level(ctx context.Context, userID, projectID primitive.ObjectID) (string, error) {
	var row models.ProjectAccess
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "project_id": projectID}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Level, nil
}

// GrantProject writes rows for every current member of the owning team
// when a project is created. Executives get executive rows.
func (s *Store) GrantProject(ctx context.Context, team models.Team, projectID primitive.ObjectID) error {
	for _, userID := range team.MemberIDs {
		level := models.AccessStandard
		if team.HasExecutive(userID) {
			level = models.AccessExecutive
		}
		if err := s.upsert(ctx, userID, projectID, team.ID, level); err != nil {
			return err
		}
	}
	return nil
}

// GrantTeamProjects writes rows for one user across all of a team's
// projects, used when the user joins the team.
func (s *Store) GrantTeamProjects(ctx context.Context, team models.Team, userID primitive.ObjectID, level string) error {
	for _, projectID := range team.ProjectIDs {
		if err := s.upsert(ctx, userID, projectID, team.ID, level); err != nil {
			return err
		}
	}
	return nil
}

// SetLevel rewrites the level on every row a user holds within a team,
// used on promotion.
func (s *Store) SetLevel(ctx context.Context, teamID, userID primitive.ObjectID, level string) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"team_id": teamID, "user_id": userID},
		bson.M{"$set": bson.M{"level": level}})
	return err
}

// RevokeUser drops every row a user holds within a team, used on
// leave and kick.
func (s *Store) RevokeUser(ctx context.Context, teamID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"team_id": teamID, "user_id": userID})
	return err
}

// RevokeTeam drops every row for a team, used on team deletion.
func (s *Store) RevokeTeam(ctx context.Context, teamID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"team_id": teamID})
	return err
}

// RevokeProject drops every row for a project, used on project
// deletion.
func (s *Store) RevokeProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	return err
}

func (s *Store) upsert(ctx context.Context, userID, projectID, teamID primitive.ObjectID, level string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "project_id": projectID},
		bson.M{
			"$set":         bson.M{"team_id": teamID, "level": level},
			"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true))
	return err
}

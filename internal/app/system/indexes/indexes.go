// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent
(CreateMany is a no-op for indexes that already exist with the same
keys and options). Errors are aggregated so every problem is visible
and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureTeams(ctx, db); err != nil {
		problems = append(problems, "teams: "+err.Error())
	}
	if err := ensureTodos(ctx, db); err != nil {
		problems = append(problems, "todos: "+err.Error())
	}
	if err := ensureProjectAccess(ctx, db); err != nil {
		problems = append(problems, "project_access: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	logger.Info("indexes ensured",
		zap.Strings("collections", []string{"users", "teams", "todos", "project_access"}))
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
	})
	return err
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("teams").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Short ids are globally unique; the generator retries on
			// collision against this index.
			Keys:    bson.D{{Key: "short_id", Value: 1}},
			Options: options.Index().SetName("uniq_short_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("by_member"),
		},
		{
			// Reverse lookup: which team owns project X.
			Keys:    bson.D{{Key: "project_ids", Value: 1}},
			Options: options.Index().SetName("by_project"),
		},
	})
	return err
}

func ensureTodos(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("todos").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Status deletion cascades to todos carrying the status.
			Keys:    bson.D{{Key: "status_id", Value: 1}},
			Options: options.Index().SetName("by_status"),
		},
	})
	return err
}

func ensureProjectAccess(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("project_access").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "project_id", Value: 1},
			},
			Options: options.Index().SetName("uniq_user_project").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}},
			Options: options.Index().SetName("by_project"),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: options.Index().SetName("by_team"),
		},
	})
	return err
}

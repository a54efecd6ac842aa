// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"time"

	accessstore "github.com/dalemusser/crewdeck/internal/app/store/access"
	teamstore "github.com/dalemusser/crewdeck/internal/app/store/teams"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/normalize"
	"github.com/dalemusser/crewdeck/internal/app/system/txn"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Every project starts with the same three stages.
var defaultStatuses = []struct {
	name  string
	color string
}{
	{"To Do", "#6b7280"},
	{"In Progress", "#3b82f6"},
	{"Done", "#22c55e"},
}

// Store owns project lifecycle, the ordered status pipeline, and the
// budget ledger (budget.go). Projects are anchored to exactly one team
// through Team.ProjectIDs.
type Store struct {
	client *mongo.Client
	c      *mongo.Collection
	todos  *mongo.Collection
	teams  *teamstore.Store
	access *accessstore.Store
	logger *zap.Logger
}

func New(db *mongo.Database, teams *teamstore.Store, access *accessstore.Store, logger *zap.Logger) *Store {
	return &Store{
		client: db.Client(),
		c:      db.Collection("projects"),
		todos:  db.Collection("todos"),
		teams:  teams,
		access: access,
		logger: logger,
	}
}

// Create seeds a project under a team with the three default statuses
// and a zeroed budget, links it into the team's ordered project list,
// and grants access rows to every current team member. Only an
// executive of the team may create projects under it.
func (s *Store) Create(ctx context.Context, teamID, callerID primitive.ObjectID, name, description string) (models.Project, error) {
	team, err := s.teams.GetByID(ctx, teamID, callerID)
	if err != nil {
		return models.Project{}, err
	}
	if !team.HasExecutive(callerID) {
		return models.Project{}, apperr.Forbidden("only executives may create projects")
	}

	name = normalize.Clean(name)
	if name == "" {
		return models.Project{}, apperr.InvalidArgument("project name must not be empty")
	}

	now := time.Now().UTC()
	statuses := make([]models.TodoStatus, 0, len(defaultStatuses))
	for _, d := range defaultStatuses {
		statuses = append(statuses, models.TodoStatus{
			ID:    primitive.NewObjectID(),
			Name:  d.name,
			Color: d.color,
		})
	}
	project := models.Project{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Description:  normalize.Clean(description),
		TodoStatuses: statuses,
		TodoIDs:      []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, project); err != nil {
			return err
		}
		if err := s.teams.LinkProject(ctx, teamID, project.ID); err != nil {
			return err
		}
		return s.access.GrantProject(ctx, team, project.ID)
	})
	if err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// Collection exposes the raw projects collection so the todo store can
// update todo_ids links inside its own transactions.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

// GetByID loads a project.
func (s *Store) GetByID(ctx context.Context, projectID primitive.ObjectID) (models.Project, error) {
	var p models.Project
	err := s.c.FindOne(ctx, bson.M{"_id": projectID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Project{}, apperr.NotFound("project", projectID.Hex())
	}
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Delete removes the project, its todos, its access rows, and the link
// from the owning team. Authorization (executive access) happens at
// the route boundary.
func (s *Store) Delete(ctx context.Context, projectID primitive.ObjectID) error {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	team, err := s.teams.GetByProjectID(ctx, projectID)
	if err != nil {
		return err
	}

	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if len(project.TodoIDs) > 0 {
			if _, err := s.todos.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": project.TodoIDs}}); err != nil {
				return err
			}
		}
		if _, err := s.c.DeleteOne(ctx, bson.M{"_id": projectID}); err != nil {
			return err
		}
		if err := s.teams.UnlinkProject(ctx, team.ID, projectID); err != nil {
			return err
		}
		return s.access.RevokeProject(ctx, projectID)
	})
}

// AddStatus appends a new stage to the project's pipeline.
func (s *Store) AddStatus(ctx context.Context, projectID primitive.ObjectID, name, color string) (models.TodoStatus, error) {
	name = normalize.Clean(name)
	if name == "" {
		return models.TodoStatus{}, apperr.InvalidArgument("status name must not be empty")
	}
	status := models.TodoStatus{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Color: normalize.Clean(color),
	}
	res, err := s.c.UpdateByID(ctx, projectID, bson.M{
		"$push": bson.M{"todo_statuses": status},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.TodoStatus{}, err
	}
	if res.MatchedCount == 0 {
		return models.TodoStatus{}, apperr.NotFound("project", projectID.Hex())
	}
	return status, nil
}

// UpdateStatus renames/recolors an existing stage.
func (s *Store) UpdateStatus(ctx context.Context, projectID, statusID primitive.ObjectID, name, color string) error {
	name = normalize.Clean(name)
	if name == "" {
		return apperr.InvalidArgument("status name must not be empty")
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "todo_statuses.id": statusID},
		bson.M{"$set": bson.M{
			"todo_statuses.$.name":  name,
			"todo_statuses.$.color": normalize.Clean(color),
			"updated_at":            time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing project from an unknown status id.
		if _, err := s.GetByID(ctx, projectID); err != nil {
			return err
		}
		return apperr.InvalidArgument("unknown status id " + statusID.Hex())
	}
	return nil
}

// DeleteStatus removes a stage and cascades: every todo sitting in the
// deleted stage is deleted and unlinked. The last remaining status can
// never be deleted, so the >=1 status invariant holds.
func (s *Store) DeleteStatus(ctx context.Context, projectID, statusID primitive.ObjectID) error {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.HasStatus(statusID) {
		return apperr.InvalidArgument("unknown status id " + statusID.Hex())
	}
	if len(project.TodoStatuses) == 1 {
		return apperr.InvalidArgument("cannot delete the only remaining status")
	}

	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		_, err := s.c.UpdateByID(ctx, projectID, bson.M{
			"$pull": bson.M{"todo_statuses": bson.M{"id": statusID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
		if err != nil {
			return err
		}

		// Cascade: todos in the deleted stage go away with it.
		cur, err := s.todos.Find(ctx, bson.M{
			"_id":       bson.M{"$in": project.TodoIDs},
			"status_id": statusID,
		})
		if err != nil {
			return err
		}
		var doomed []models.Todo
		if err := cur.All(ctx, &doomed); err != nil {
			return err
		}
		if len(doomed) == 0 {
			return nil
		}
		ids := make([]primitive.ObjectID, 0, len(doomed))
		for _, t := range doomed {
			ids = append(ids, t.ID)
		}
		if _, err := s.todos.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
			return err
		}
		_, err = s.c.UpdateByID(ctx, projectID, bson.M{
			"$pull": bson.M{"todo_ids": bson.M{"$in": ids}},
		})
		return err
	})
}

// ReorderStatuses persists a new stage order. The supplied ids must be
// exactly a permutation of the current ones; anything else is rejected
// and the stored order stays unchanged.
func (s *Store) ReorderStatuses(ctx context.Context, projectID primitive.ObjectID, orderedIDs []primitive.ObjectID) error {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	current := make([]primitive.ObjectID, 0, len(project.TodoStatuses))
	byID := make(map[primitive.ObjectID]models.TodoStatus, len(project.TodoStatuses))
	for _, st := range project.TodoStatuses {
		current = append(current, st.ID)
		byID[st.ID] = st
	}
	if !models.IsPermutation(current, orderedIDs) {
		return apperr.InvalidArgument("new order must be a permutation of the current status ids")
	}

	reordered := make([]models.TodoStatus, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		reordered = append(reordered, byID[id])
	}
	_, err = s.c.UpdateByID(ctx, projectID, bson.M{
		"$set": bson.M{"todo_statuses": reordered, "updated_at": time.Now().UTC()},
	})
	return err
}

// internal/app/store/todos/todostore.go
package todostore

import (
	"context"
	"time"

	projectstore "github.com/dalemusser/crewdeck/internal/app/store/projects"
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

// Store owns the todo workflow: creation with the propose/approve
// split, updates, ordering, assignment, and the one-directional
// approval transition.
type Store struct {
	client   *mongo.Client
	c        *mongo.Collection
	projects *projectstore.Store
	teams    *teamstore.Store
	logger   *zap.Logger
}

func New(db *mongo.Database, projects *projectstore.Store, teams *teamstore.Store, logger *zap.Logger) *Store {
	return &Store{
		client:   db.Client(),
		c:        db.Collection("todos"),
		projects: projects,
		teams:    teams,
		logger:   logger,
	}
}

// Add creates a todo under a project. The approved flag is fixed here,
// once, by the caller's standing in the owning team: an executive's
// todo is live immediately, anyone else's enters the proposed state.
// A missing status defaults to the project's first stage.
func (s *Store) Add(ctx context.Context, projectID, callerID primitive.ObjectID, name, description string, statusID, assigneeID *primitive.ObjectID) (models.Todo, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return models.Todo{}, err
	}
	team, err := s.teams.GetByProjectID(ctx, projectID)
	if err != nil {
		return models.Todo{}, err
	}

	name = normalize.Clean(name)
	if name == "" {
		return models.Todo{}, apperr.InvalidArgument("todo name must not be empty")
	}

	var status primitive.ObjectID
	switch {
	case statusID != nil:
		if !project.HasStatus(*statusID) {
			return models.Todo{}, apperr.InvalidArgument("unknown status id " + statusID.Hex())
		}
		status = *statusID
	case len(project.TodoStatuses) > 0:
		status = project.TodoStatuses[0].ID
	default:
		return models.Todo{}, apperr.InvalidArgument("project has no statuses")
	}

	if assigneeID != nil && !team.HasMember(*assigneeID) {
		return models.Todo{}, apperr.InvalidArgument("assignee is not a member of the owning team")
	}

	now := time.Now().UTC()
	todo := models.Todo{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: normalize.Clean(description),
		StatusID:    status,
		AssigneeID:  assigneeID,
		Approved:    team.HasExecutive(callerID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, todo); err != nil {
			return err
		}
		_, err := s.projects.Collection().UpdateByID(ctx, projectID, bson.M{
			"$push": bson.M{"todo_ids": todo.ID},
			"$set":  bson.M{"updated_at": now},
		})
		return err
	})
	if err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

// Update rewrites a todo's fields. The new status must be one of the
// project's current stages.
func (s *Store) Update(ctx context.Context, projectID, todoID primitive.ObjectID, name, description string, statusID primitive.ObjectID, assigneeID *primitive.ObjectID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.HasTodo(todoID) {
		return apperr.NotFound("todo", todoID.Hex())
	}
	if !project.HasStatus(statusID) {
		return apperr.InvalidArgument("unknown status id " + statusID.Hex())
	}
	name = normalize.Clean(name)
	if name == "" {
		return apperr.InvalidArgument("todo name must not be empty")
	}

	set := bson.M{
		"name":        name,
		"description": normalize.Clean(description),
		"status_id":   statusID,
		"assignee_id": assigneeID,
		"updated_at":  time.Now().UTC(),
	}
	_, err = s.c.UpdateByID(ctx, todoID, bson.M{"$set": set})
	return err
}

// Delete removes a todo and its link from the project.
func (s *Store) Delete(ctx context.Context, projectID, todoID primitive.ObjectID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.HasTodo(todoID) {
		return apperr.NotFound("todo", todoID.Hex())
	}

	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if _, err := s.c.DeleteOne(ctx, bson.M{"_id": todoID}); err != nil {
			return err
		}
		_, err := s.projects.Collection().UpdateByID(ctx, projectID, bson.M{
			"$pull": bson.M{"todo_ids": todoID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
		return err
	})
}

// Reorder persists a new todo order under the same permutation law as
// status reordering.
func (s *Store) Reorder(ctx context.Context, projectID primitive.ObjectID, orderedIDs []primitive.ObjectID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !models.IsPermutation(project.TodoIDs, orderedIDs) {
		return apperr.InvalidArgument("new order must be a permutation of the current todo ids")
	}
	_, err = s.projects.Collection().UpdateByID(ctx, projectID, bson.M{
		"$set": bson.M{"todo_ids": orderedIDs, "updated_at": time.Now().UTC()},
	})
	return err
}

// Assign points a todo at a member of the owning team.
func (s *Store) Assign(ctx context.Context, projectID, todoID, assigneeID primitive.ObjectID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.HasTodo(todoID) {
		return apperr.NotFound("todo", todoID.Hex())
	}
	team, err := s.teams.GetByProjectID(ctx, projectID)
	if err != nil {
		return err
	}
	if !team.HasMember(assigneeID) {
		return apperr.InvalidArgument("assignee is not a member of the owning team")
	}

	_, err = s.c.UpdateByID(ctx, todoID, bson.M{"$set": bson.M{
		"assignee_id": assigneeID,
		"updated_at":  time.Now().UTC(),
	}})
	return err
}

// Approve flips a proposed todo to approved. One-directional by
// design: there is no reject or return-to-proposed transition. Caller
// authorization happens at the route boundary.
func (s *Store) Approve(ctx context.Context, todoID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, todoID, bson.M{"$set": bson.M{
		"approved":   true,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("todo", todoID.Hex())
	}
	return nil
}

// ListForProject returns the project's todos in todo_ids order.
func (s *Store) ListForProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Todo, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.fetchOrdered(ctx, project.TodoIDs, bson.M{"_id": bson.M{"$in": project.TodoIDs}})
}

// ListProposed returns the project's todos still awaiting approval,
// in todo_ids order.
func (s *Store) ListProposed(ctx context.Context, projectID primitive.ObjectID) ([]models.Todo, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.fetchOrdered(ctx, project.TodoIDs, bson.M{
		"_id":      bson.M{"$in": project.TodoIDs},
		"approved": false,
	})
}

func (s *Store) fetchOrdered(ctx context.Context, order []primitive.ObjectID, filter bson.M) ([]models.Todo, error) {
	if len(order) == 0 {
		return []models.Todo{}, nil
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var found []models.Todo
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Todo, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	ordered := make([]models.Todo, 0, len(found))
	for _, id := range order {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

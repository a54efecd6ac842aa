package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data. Documents
// are inserted directly, including the project_access rows the guard
// reads, so store and handler tests start from a consistent state.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given email.
func (f *Fixtures) CreateUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		EmailCI:   text.Fold(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTeam creates a team with the given user as sole member and
// executive.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, execID primitive.ObjectID) models.Team {
	f.t.Helper()
	return f.CreateTeamWithMembers(ctx, name, execID)
}

// CreateTeamWithMembers creates a team with one executive plus any
// number of standard members.
func (f *Fixtures) CreateTeamWithMembers(ctx context.Context, name string, execID primitive.ObjectID, memberIDs ...primitive.ObjectID) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:            primitive.NewObjectID(),
		ShortID:       primitive.NewObjectID().Hex()[:6],
		Name:          name,
		NameCI:        text.Fold(name),
		MemberIDs:     append([]primitive.ObjectID{execID}, memberIDs...),
		ExecMemberIDs: []primitive.ObjectID{execID},
		ProjectIDs:    []primitive.ObjectID{},
		EventIDs:      []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// CreateProject creates a project under a team with the standard three
// statuses and a zeroed budget, links it into the team, and writes the
// access rows every current member would have been granted.
func (f *Fixtures) CreateProject(ctx context.Context, team models.Team, name string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: "",
		TodoStatuses: []models.TodoStatus{
			{ID: primitive.NewObjectID(), Name: "To Do", Color: "#6b7280"},
			{ID: primitive.NewObjectID(), Name: "In Progress", Color: "#3b82f6"},
			{ID: primitive.NewObjectID(), Name: "Done", Color: "#22c55e"},
		},
		TodoIDs:   []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	_, err := f.db.Collection("teams").UpdateByID(ctx, team.ID, bson.M{
		"$push": bson.M{"project_ids": project.ID},
	})
	if err != nil {
		f.t.Fatalf("failed to link test project to team: %v", err)
	}

	for _, userID := range team.MemberIDs {
		level := models.AccessStandard
		if team.HasExecutive(userID) {
			level = models.AccessExecutive
		}
		f.GrantAccess(ctx, userID, project.ID, team.ID, level)
	}

	return project
}

// CreateTodo creates an approved todo in the project's first status
// and links it into the project's ordered todo list.
func (f *Fixtures) CreateTodo(ctx context.Context, project models.Project, name string) models.Todo {
	f.t.Helper()

	now := time.Now().UTC()
	todo := models.Todo{
		ID:        primitive.NewObjectID(),
		Name:      name,
		StatusID:  project.TodoStatuses[0].ID,
		Approved:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("todos").InsertOne(ctx, todo); err != nil {
		f.t.Fatalf("failed to create test todo: %v", err)
	}
	_, err := f.db.Collection("projects").UpdateByID(ctx, project.ID, bson.M{
		"$push": bson.M{"todo_ids": todo.ID},
	})
	if err != nil {
		f.t.Fatalf("failed to link test todo to project: %v", err)
	}
	return todo
}

// GrantAccess writes a single project_access row.
func (f *Fixtures) GrantAccess(ctx context.Context, userID, projectID, teamID primitive.ObjectID, level string) {
	f.t.Helper()

	row := models.ProjectAccess{
		UserID:    userID,
		ProjectID: projectID,
		TeamID:    teamID,
		Level:     level,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("project_access").InsertOne(ctx, row); err != nil {
		f.t.Fatalf("failed to create test access row: %v", err)
	}
}

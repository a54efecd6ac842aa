package projectstore_test

import (
	"errors"
	"testing"

	accessstore "github.com/dalemusser/crewdeck/internal/app/store/access"
	projectstore "github.com/dalemusser/crewdeck/internal/app/store/projects"
	teamstore "github.com/dalemusser/crewdeck/internal/app/store/teams"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/shortid"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	db       *mongo.Database
	access   *accessstore.Store
	teams    *teamstore.Store
	projects *projectstore.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	access := accessstore.New(db)
	gen := shortid.New(shortid.DefaultLength, shortid.DefaultMaxAttempts)
	teams := teamstore.New(db, access, gen, zap.NewNop())
	projects := projectstore.New(db, teams, access, zap.NewNop())
	return &env{db: db, access: access, teams: teams, projects: projects}
}

func TestStore_Create_SeedsDefaults(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	if err := e.teams.Join(ctx, team.ID, memberID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "first launch")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(project.TodoStatuses) != 3 {
		t.Fatalf("expected 3 default statuses, got %d", len(project.TodoStatuses))
	}
	wantNames := []string{"To Do", "In Progress", "Done"}
	for i, st := range project.TodoStatuses {
		if st.Name != wantNames[i] {
			t.Errorf("status %d: got %q, want %q", i, st.Name, wantNames[i])
		}
		if st.ID == primitive.NilObjectID {
			t.Errorf("status %d: expected id to be assigned", i)
		}
	}
	if project.BudgetAvailable != 0 || project.BudgetSpent != 0 {
		t.Errorf("expected zeroed budget, got available=%v spent=%v", project.BudgetAvailable, project.BudgetSpent)
	}

	// The project must be linked into the team's ordered list.
	updated, err := e.teams.GetByID(ctx, team.ID, execID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(updated.ProjectIDs) != 1 || updated.ProjectIDs[0] != project.ID {
		t.Errorf("expected project linked into team, got %v", updated.ProjectIDs)
	}

	// Every current member got an access row at their tier.
	level, err := e.access.Level(ctx, execID, project.ID)
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != models.AccessExecutive {
		t.Errorf("executive access level: got %q, want %q", level, models.AccessExecutive)
	}
	level, err = e.access.Level(ctx, memberID, project.ID)
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != models.AccessStandard {
		t.Errorf("member access level: got %q, want %q", level, models.AccessStandard)
	}
}

func TestStore_Create_StandardMemberForbidden(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team, err := e.teams.Create(ctx, primitive.NewObjectID(), "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	memberID := primitive.NewObjectID()
	if err := e.teams.Join(ctx, team.ID, memberID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	_, err = e.projects.Create(ctx, team.ID, memberID, "Launch Plan", "")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden for standard member, got %v", err)
	}
}

func TestStore_Delete_Cascades(t *testing.T) {
	e := newEnv(t)
	fixtures := testutil.NewFixtures(t, e.db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "")
	if err != nil {
		t.Fatalf("project Create failed: %v", err)
	}
	todo := fixtures.CreateTodo(ctx, project, "Fuel check")

	if err := e.projects.Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := e.projects.GetByID(ctx, project.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected project gone, got %v", err)
	}
	count, err := e.db.Collection("todos").CountDocuments(ctx, bson.M{"_id": todo.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Error("expected todos deleted with the project")
	}
	updated, err := e.teams.GetByID(ctx, team.ID, execID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(updated.ProjectIDs) != 0 {
		t.Errorf("expected project unlinked from team, got %v", updated.ProjectIDs)
	}
	level, err := e.access.Level(ctx, execID, project.ID)
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != "" {
		t.Errorf("expected access rows revoked, got %q", level)
	}
}

func TestStore_AddStatus(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "")
	if err != nil {
		t.Fatalf("project Create failed: %v", err)
	}

	status, err := e.projects.AddStatus(ctx, project.ID, "Blocked", "#ef4444")
	if err != nil {
		t.Fatalf("AddStatus failed: %v", err)
	}

	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(updated.TodoStatuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(updated.TodoStatuses))
	}
	// New stages append at the end of the pipeline.
	if last := updated.TodoStatuses[3]; last.ID != status.ID || last.Name != "Blocked" {
		t.Errorf("expected new status appended last, got %+v", last)
	}

	_, err = e.projects.AddStatus(ctx, primitive.NewObjectID(), "Nope", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "")
	if err != nil {
		t.Fatalf("project Create failed: %v", err)
	}

	statusID := project.TodoStatuses[1].ID
	if err := e.projects.UpdateStatus(ctx, project.ID, statusID, "Doing", "#8b5cf6"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.TodoStatuses[1].Name != "Doing" || updated.TodoStatuses[1].Color != "#8b5cf6" {
		t.Errorf("status not updated: %+v", updated.TodoStatuses[1])
	}

	err = e.projects.UpdateStatus(ctx, project.ID, primitive.NewObjectID(), "Ghost", "")
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
}

func TestStore_DeleteStatus_CascadesTodos(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "")
	if err != nil {
		t.Fatalf("project Create failed: %v", err)
	}
	fixtures := testutil.NewFixtures(t, e.db)
	doomed := fixtures.CreateTodo(ctx, project, "In first stage")

	if err := e.projects.DeleteStatus(ctx, project.ID, project.TodoStatuses[0].ID); err != nil {
		t.Fatalf("DeleteStatus failed: %v", err)
	}

	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(updated.TodoStatuses) != 2 {
		t.Errorf("expected 2 statuses left, got %d", len(updated.TodoStatuses))
	}
	count, err := e.db.Collection("todos").CountDocuments(ctx, bson.M{"_id": doomed.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Error("expected todo in the deleted stage to be deleted")
	}
	if updated.HasTodo(doomed.ID) {
		t.Error("expected todo unlinked from project")
	}
}

func TestStore_DeleteStatus_LastStatusRejected(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "")
	if err != nil {
		t.Fatalf("project Create failed: %v", err)
	}

	if err := e.projects.DeleteStatus(ctx, project.ID, project.TodoStatuses[0].ID); err != nil {
		t.Fatalf("DeleteStatus failed: %v", err)
	}
	if err := e.projects.DeleteStatus(ctx, project.ID, project.TodoStatuses[1].ID); err != nil {
		t.Fatalf("DeleteStatus failed: %v", err)
	}

	err = e.projects.DeleteStatus(ctx, project.ID, project.TodoStatuses[2].ID)
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument deleting the only status, got %v", err)
	}

	err = e.projects.DeleteStatus(ctx, project.ID, primitive.NewObjectID())
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
}

func TestStore_ReorderStatuses(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "")
	if err != nil {
		t.Fatalf("project Create failed: %v", err)
	}

	reversed := []primitive.ObjectID{
		project.TodoStatuses[2].ID,
		project.TodoStatuses[1].ID,
		project.TodoStatuses[0].ID,
	}
	if err := e.projects.ReorderStatuses(ctx, project.ID, reversed); err != nil {
		t.Fatalf("ReorderStatuses failed: %v", err)
	}

	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	for i, want := range reversed {
		if updated.TodoStatuses[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, updated.TodoStatuses[i].ID.Hex(), want.Hex())
		}
	}
}

func TestStore_ReorderStatuses_RejectsNonPermutation(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	team, err := e.teams.Create(ctx, execID, "Apollo Crew")
	if err != nil {
		t.Fatalf("team Create failed: %v", err)
	}
	project, err := e.projects.Create(ctx, team.ID, execID, "Launch Plan", "")
	if err != nil {
		t.Fatalf("project Create failed: %v", err)
	}

	cases := map[string][]primitive.ObjectID{
		"missing id": {project.TodoStatuses[0].ID, project.TodoStatuses[1].ID},
		"foreign id": {project.TodoStatuses[0].ID, project.TodoStatuses[1].ID, primitive.NewObjectID()},
		"duplicate":  {project.TodoStatuses[0].ID, project.TodoStatuses[0].ID, project.TodoStatuses[1].ID},
	}
	for name, ordered := range cases {
		err := e.projects.ReorderStatuses(ctx, project.ID, ordered)
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", name, err)
		}
	}

	// Stored order stays untouched after every rejection.
	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	for i, st := range project.TodoStatuses {
		if updated.TodoStatuses[i].ID != st.ID {
			t.Errorf("position %d changed after rejected reorder", i)
		}
	}
}

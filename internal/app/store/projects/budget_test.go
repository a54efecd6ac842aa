package projectstore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_IncreaseBudget(t *testing.T) {
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

	if err := e.projects.IncreaseBudget(ctx, project.ID, 250.50); err != nil {
		t.Fatalf("IncreaseBudget failed: %v", err)
	}
	if err := e.projects.IncreaseBudget(ctx, project.ID, 49.50); err != nil {
		t.Fatalf("IncreaseBudget failed: %v", err)
	}

	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.BudgetAvailable != 300 {
		t.Errorf("available: got %v, want 300", updated.BudgetAvailable)
	}
	if updated.BudgetSpent != 0 {
		t.Errorf("spent: got %v, want 0", updated.BudgetSpent)
	}
}

func TestStore_IncreaseBudget_RejectsNonPositive(t *testing.T) {
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

	for _, amount := range []float64{0, -10} {
		err := e.projects.IncreaseBudget(ctx, project.ID, amount)
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("amount %v: expected ErrInvalidArgument, got %v", amount, err)
		}
	}

	err = e.projects.IncreaseBudget(ctx, primitive.NewObjectID(), 10)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestStore_SpendBudget(t *testing.T) {
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

	if err := e.projects.IncreaseBudget(ctx, project.ID, 100); err != nil {
		t.Fatalf("IncreaseBudget failed: %v", err)
	}
	if err := e.projects.SpendBudget(ctx, project.ID, 60); err != nil {
		t.Fatalf("SpendBudget failed: %v", err)
	}

	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.BudgetAvailable != 40 {
		t.Errorf("available: got %v, want 40", updated.BudgetAvailable)
	}
	if updated.BudgetSpent != 60 {
		t.Errorf("spent: got %v, want 60", updated.BudgetSpent)
	}

	// Spending the exact remainder is allowed.
	if err := e.projects.SpendBudget(ctx, project.ID, 40); err != nil {
		t.Fatalf("SpendBudget of exact remainder failed: %v", err)
	}
}

func TestStore_SpendBudget_Overspend(t *testing.T) {
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
	if err := e.projects.IncreaseBudget(ctx, project.ID, 50); err != nil {
		t.Fatalf("IncreaseBudget failed: %v", err)
	}

	err = e.projects.SpendBudget(ctx, project.ID, 50.01)
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument on overspend, got %v", err)
	}

	// A rejected spend leaves both fields untouched.
	updated, err := e.projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.BudgetAvailable != 50 || updated.BudgetSpent != 0 {
		t.Errorf("budget changed after rejected spend: available=%v spent=%v", updated.BudgetAvailable, updated.BudgetSpent)
	}

	err = e.projects.SpendBudget(ctx, primitive.NewObjectID(), 1)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
}

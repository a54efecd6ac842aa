package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/crewdeck/internal/app/store/users"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_UpsertByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, err := store.UpsertByEmail(ctx, "Astronaut@Example.com")
	if err != nil {
		t.Fatalf("UpsertByEmail failed: %v", err)
	}
	if user.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if user.EmailCI != "astronaut@example.com" {
		t.Errorf("EmailCI: got %q, want folded email", user.EmailCI)
	}

	// Signing in again with a differently cased email resolves to the
	// same account.
	again, err := store.UpsertByEmail(ctx, "astronaut@example.COM")
	if err != nil {
		t.Fatalf("second UpsertByEmail failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected same user id, got %s and %s", user.ID.Hex(), again.ID.Hex())
	}
}

func TestStore_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.UpsertByEmail(ctx, "astronaut@example.com")
	if err != nil {
		t.Fatalf("UpsertByEmail failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != created.Email {
		t.Errorf("Email: got %q, want %q", got.Email, created.Email)
	}

	_, err = store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

package accessstore_test

import (
	"testing"

	accessstore "github.com/dalemusser/crewdeck/internal/app/store/access"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Level_NoRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accessstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	level, err := store.Level(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != "" {
		t.Errorf("expected empty level for missing row, got %q", level)
	}
}

func TestStore_GrantProject_TieredLevels(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accessstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	execID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	team := models.Team{
		ID:            primitive.NewObjectID(),
		MemberIDs:     []primitive.ObjectID{execID, memberID},
		ExecMemberIDs: []primitive.ObjectID{execID},
	}
	projectID := primitive.NewObjectID()

	if err := store.GrantProject(ctx, team, projectID); err != nil {
		t.Fatalf("GrantProject failed: %v", err)
	}

	level, err := store.Level(ctx, execID, projectID)
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != models.AccessExecutive {
		t.Errorf("executive: got %q, want %q", level, models.AccessExecutive)
	}

	level, err = store.Level(ctx, memberID, projectID)
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != models.AccessStandard {
		t.Errorf("member: got %q, want %q", level, models.AccessStandard)
	}
}

func TestStore_Upserts_AreIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accessstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	team := models.Team{
		ID:         primitive.NewObjectID(),
		MemberIDs:  []primitive.ObjectID{userID},
		ProjectIDs: []primitive.ObjectID{projectID},
	}

	// Replaying the same grant must not create duplicate rows.
	for i := 0; i < 3; i++ {
		if err := store.GrantTeamProjects(ctx, team, userID, models.AccessStandard); err != nil {
			t.Fatalf("GrantTeamProjects failed: %v", err)
		}
	}

	count, err := db.Collection("project_access").CountDocuments(ctx, bson.M{
		"user_id": userID, "project_id": projectID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 access row, got %d", count)
	}
}

func TestStore_SetLevelAndRevokes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accessstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	projectA := primitive.NewObjectID()
	projectB := primitive.NewObjectID()
	team := models.Team{
		ID:         primitive.NewObjectID(),
		MemberIDs:  []primitive.ObjectID{userID},
		ProjectIDs: []primitive.ObjectID{projectA, projectB},
	}
	if err := store.GrantTeamProjects(ctx, team, userID, models.AccessStandard); err != nil {
		t.Fatalf("GrantTeamProjects failed: %v", err)
	}

	// Promotion rewrites the level on every project row in the team.
	if err := store.SetLevel(ctx, team.ID, userID, models.AccessExecutive); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	for _, projectID := range []primitive.ObjectID{projectA, projectB} {
		level, err := store.Level(ctx, userID, projectID)
		if err != nil {
			t.Fatalf("Level failed: %v", err)
		}
		if level != models.AccessExecutive {
			t.Errorf("project %s: got %q, want %q", projectID.Hex(), level, models.AccessExecutive)
		}
	}

	// RevokeProject drops rows for one project only.
	if err := store.RevokeProject(ctx, projectA); err != nil {
		t.Fatalf("RevokeProject failed: %v", err)
	}
	level, err := store.Level(ctx, userID, projectA)
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != "" {
		t.Errorf("expected projectA row gone, got %q", level)
	}

	// RevokeUser drops the user's remaining rows in the team.
	if err := store.RevokeUser(ctx, team.ID, userID); err != nil {
		t.Fatalf("RevokeUser failed: %v", err)
	}
	level, err = store.Level(ctx, userID, projectB)
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if level != "" {
		t.Errorf("expected projectB row gone, got %q", level)
	}

	// RevokeTeam clears whatever is left for the team.
	if err := store.GrantTeamProjects(ctx, team, userID, models.AccessStandard); err != nil {
		t.Fatalf("GrantTeamProjects failed: %v", err)
	}
	if err := store.RevokeTeam(ctx, team.ID); err != nil {
		t.Fatalf("RevokeTeam failed: %v", err)
	}
	count, err := db.Collection("project_access").CountDocuments(ctx, bson.M{"team_id": team.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected all team rows gone, got %d", count)
	}
}

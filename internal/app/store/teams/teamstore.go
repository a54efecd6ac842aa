// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"time"

	accessstore "github.com/dalemusser/crewdeck/internal/app/store/access"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/normalize"
	"github.com/dalemusser/crewdeck/internal/app/system/shortid"
	"github.com/dalemusser/crewdeck/internal/app/system/txn"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// How many short-id insert races we tolerate before giving up. The
// generator already pre-checks candidates; hitting the unique index
// anyway means a concurrent create picked the same id.
const createRetries = 3

// Store is the team registry: membership, the executive tier, and team
// lifecycle. Every membership mutation also maintains the
// project_access index so authorization stays a single lookup.
type Store struct {
	client *mongo.Client
	c      *mongo.Collection
	access *accessstore.Store
	gen    *shortid.Generator
	logger *zap.Logger
}

func New(db *mongo.Database, access *accessstore.Store, gen *shortid.Generator, logger *zap.Logger) *Store {
	return &Store{
		client: db.Client(),
		c:      db.Collection("teams"),
		access: access,
		gen:    gen,
		logger: logger,
	}
}

// Create inserts a team with the creator as sole member and sole
// executive, under a fresh globally unique short id.
func (s *Store) Create(ctx context.Context, creatorID primitive.ObjectID, name string) (models.Team, error) {
	name = normalize.Clean(name)
	if name == "" {
		return models.Team{}, apperr.InvalidArgument("team name must not be empty")
	}

	for attempt := 0; ; attempt++ {
		sid, err := s.gen.Next(ctx, func(ctx context.Context, id string) (bool, error) {
			n, err := s.c.CountDocuments(ctx, bson.M{"short_id": id})
			return n > 0, err
		})
		if err != nil {
			return models.Team{}, err
		}

		now := time.Now().UTC()
		team := models.Team{
			ID:            primitive.NewObjectID(),
			ShortID:       sid,
			Name:          name,
			NameCI:        normalize.Fold(name),
			MemberIDs:     []primitive.ObjectID{creatorID},
			ExecMemberIDs: []primitive.ObjectID{creatorID},
			ProjectIDs:    []primitive.ObjectID{},
			EventIDs:      []primitive.ObjectID{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, err = s.c.InsertOne(ctx, team)
		if err == nil {
			return team, nil
		}
		if wafflemongo.IsDup(err) && attempt < createRetries {
			s.logger.Debug("short id collided on insert, regenerating",
				zap.String("short_id", sid))
			continue
		}
		return models.Team{}, err
	}
}

// GetByID loads a team; only members may see it.
func (s *Store) GetByID(ctx context.Context, teamID, callerID primitive.ObjectID) (models.Team, error) {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return models.Team{}, err
	}
	if !team.HasMember(callerID) {
		return models.Team{}, apperr.Forbidden("not a member of team " + teamID.Hex())
	}
	return team, nil
}

// GetByProjectID resolves the owning team of a project by reverse
// lookup on project_ids.
func (s *Store) GetByProjectID(ctx context.Context, projectID primitive.ObjectID) (models.Team, error) {
	var team models.Team
	err := s.c.FindOne(ctx, bson.M{"project_ids": projectID}).Decode(&team)
	if err == mongo.ErrNoDocuments {
		return models.Team{}, apperr.NotFound("owning team of project", projectID.Hex())
	}
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// ListForUser returns every team the user belongs to.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error) {
	cur, err := s.c.Find(ctx, bson.M{"member_ids": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	teams := []models.Team{}
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Join adds a user to the team's membership. Joining twice is an
// explicit error, not a silent no-op.
func (s *Store) Join(ctx context.Context, teamID, userID primitive.ObjectID) error {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return err
	}
	if team.HasMember(userID) {
		return apperr.InvalidArgument("user is already a member of team " + teamID.Hex())
	}

	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if err := s.update(ctx, teamID, bson.M{"$addToSet": bson.M{"member_ids": userID}}); err != nil {
			return err
		}
		return s.access.GrantTeamProjects(ctx, team, userID, models.AccessStandard)
	})
}

// JoinByShortID resolves a join-link short id and delegates to Join.
func (s *Store) JoinByShortID(ctx context.Context, shortID string, userID primitive.ObjectID) (models.Team, error) {
	var team models.Team
	err := s.c.FindOne(ctx, bson.M{"short_id": shortID}).Decode(&team)
	if err == mongo.ErrNoDocuments {
		return models.Team{}, apperr.NotFound("team with short id", shortID)
	}
	if err != nil {
		return models.Team{}, err
	}
	if err := s.Join(ctx, team.ID, userID); err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// Promote elevates an existing member to the executive tier.
// Idempotent: promoting an executive again succeeds without change.
func (s *Store) Promote(ctx context.Context, teamID, memberID, callerID primitive.ObjectID) error {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.HasExecutive(callerID) {
		return apperr.Forbidden("only executives may promote members")
	}
	if !team.HasMember(memberID) {
		return apperr.InvalidArgument("user is not a member of team " + teamID.Hex())
	}

	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if err := s.update(ctx, teamID, bson.M{"$addToSet": bson.M{"exec_member_ids": memberID}}); err != nil {
			return err
		}
		return s.access.SetLevel(ctx, teamID, memberID, models.AccessExecutive)
	})
}

// Leave removes the user from the team. When the sole executive
// leaves, the whole team is deleted instead: a team with zero
// executives cannot exist.
func (s *Store) Leave(ctx context.Context, teamID, userID primitive.ObjectID) error {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.HasMember(userID) {
		return apperr.InvalidArgument("user is not a member of team " + teamID.Hex())
	}

	if len(team.ExecMemberIDs) == 1 && team.ExecMemberIDs[0] == userID {
		return s.deleteTeam(ctx, team)
	}

	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		err := s.update(ctx, teamID, bson.M{"$pull": bson.M{
			"member_ids":      userID,
			"exec_member_ids": userID,
		}})
		if err != nil {
			return err
		}
		return s.access.RevokeUser(ctx, teamID, userID)
	})
}

// Delete removes the team on behalf of an executive.
func (s *Store) Delete(ctx context.Context, teamID, callerID primitive.ObjectID) error {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.HasExecutive(callerID) {
		return apperr.Forbidden("only executives may delete the team")
	}
	return s.deleteTeam(ctx, team)
}

// Kick removes a member on behalf of an executive. Executives cannot
// be kicked by anyone; demote-then-kick is not a thing either, there
// is no demote.
func (s *Store) Kick(ctx context.Context, teamID, targetID, callerID primitive.ObjectID) error {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return err
	}
	if team.HasExecutive(targetID) {
		return apperr.Forbidden("executives cannot be kicked")
	}
	if !team.HasExecutive(callerID) {
		return apperr.Forbidden("only executives may kick members")
	}

	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if err := s.update(ctx, teamID, bson.M{"$pull": bson.M{"member_ids": targetID}}); err != nil {
			return err
		}
		return s.access.RevokeUser(ctx, teamID, targetID)
	})
}

// LinkProject appends a project id to the team's ordered project list.
func (s *Store) LinkProject(ctx context.Context, teamID, projectID primitive.ObjectID) error {
	return s.update(ctx, teamID, bson.M{"$addToSet": bson.M{"project_ids": projectID}})
}

// UnlinkProject removes a project id from the team.
func (s *Store) UnlinkProject(ctx context.Context, teamID, projectID primitive.ObjectID) error {
	return s.update(ctx, teamID, bson.M{"$pull": bson.M{"project_ids": projectID}})
}

// deleteTeam drops the team document and all of its access rows.
// Owned projects and events are intentionally left in place; this is
// the single spot to change if orphaned projects ever get a cascade
// or archive policy.
func (s *Store) deleteTeam(ctx context.Context, team models.Team) error {
	return txn.WithTransaction(ctx, s.client, s.logger, func(ctx context.Context) error {
		if _, err := s.c.DeleteOne(ctx, bson.M{"_id": team.ID}); err != nil {
			return err
		}
		return s.access.RevokeTeam(ctx, team.ID)
	})
}

func (s *Store) load(ctx context.Context, teamID primitive.ObjectID) (models.Team, error) {
	var team models.Team
	err := s.c.FindOne(ctx, bson.M{"_id": teamID}).Decode(&team)
	if err == mongo.ErrNoDocuments {
		return models.Team{}, apperr.NotFound("team", teamID.Hex())
	}
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (s *Store) update(ctx context.Context, teamID primitive.ObjectID, mutation bson.M) error {
	full := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	for op, fields := range mutation {
		if op == "$set" {
			for k, v := range fields.(bson.M) {
				full["$set"].(bson.M)[k] = v
			}
			continue
		}
		full[op] = fields
	}
	_, err := s.c.UpdateByID(ctx, teamID, full)
	return err
}

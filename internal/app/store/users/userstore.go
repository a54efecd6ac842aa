// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/normalize"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store owns the users collection. The rest of the system only ever
// reads {id, email}; everything identity-related beyond that (tokens,
// verification) lives outside the core.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, apperr.NotFound("user", id.Hex())
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertByEmail finds or creates the user for a verified email and
// returns the stored document. Sign-in calls this so a first-time
// visitor and a returning one take the same path.
func (s *Store) UpsertByEmail(ctx context.Context, email string) (models.User, error) {
	emailCI := normalize.Fold(email)
	now := time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"email_ci": emailCI},
		bson.M{
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"email": email, "email_ci": emailCI, "created_at": now},
		},
		opts,
	).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

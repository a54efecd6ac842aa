// internal/app/store/projects/budget.go
package projectstore

import (
	"context"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The budget ledger is the (budget_available, budget_spent) pair on a
// project. Spend moves value between the two fields in one conditional
// update: the overspend check and the mutation are a single atomic
// store operation, so two concurrent spends cannot both pass against a
// stale read.

// IncreaseBudget adds funds to the available balance.
func (s *Store) IncreaseBudget(ctx context.Context, projectID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return apperr.InvalidArgument("amount must be positive")
	}
	res, err := s.c.UpdateByID(ctx, projectID, bson.M{
		"$inc": bson.M{"budget_available": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("project", projectID.Hex())
	}
	return nil
}

// SpendBudget moves amount from available to spent. Spending more than
// is available fails and leaves both fields untouched.
func (s *Store) SpendBudget(ctx context.Context, projectID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return apperr.InvalidArgument("amount must be positive")
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "budget_available": bson.M{"$gte": amount}},
		bson.M{
			"$inc": bson.M{
				"budget_available": -amount,
				"budget_spent":     amount,
			},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the project is gone or the balance was too low.
		if _, err := s.GetByID(ctx, projectID); err != nil {
			return err
		}
		return apperr.InvalidArgument("amount exceeds available budget")
	}
	return nil
}

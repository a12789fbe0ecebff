// File: database/repository/offer/indexes.go
package offerRepo

import (
	"context"
	"fmt"
	"time"

	"fleetbid/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the offers collection.
func (r *mongoOfferRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on offer ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One pending offer per provider per session. Partial so closed
		// offers never block a resubmission on a later session.
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "provider_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_pending_offer").
				SetPartialFilterExpression(bson.M{"status": models.OfferStatusPending}),
		},
		// Primary query pattern: all offers for a session in arrival order.
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("session_arrival_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create offer indexes: %w", err)
	}
	return nil
}

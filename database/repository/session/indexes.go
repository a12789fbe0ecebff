// File: database/repository/session/indexes.go
package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"fleetbid/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the sessions collection.
func (repo *MongoSessionRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on session ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// At most one open session per booking. Partial so closed sessions
		// never block a later reopen, and so a racing second open loses at
		// insert time instead of slipping past the pre-check.
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_open_session").
				SetPartialFilterExpression(bson.M{"status": models.SessionStatusOpen}),
		},
		// Sweep query pattern: open sessions ordered by their deadline.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "closes_at", Value: 1}},
			Options: options.Index().SetName("status_deadline_idx"),
		},
	}

	_, err := repo.sessionColl.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}

// File: database/repository/ledger/indexes.go
package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the ledger collections.
func (repo *MongoLedgerRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	escrowIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One hold per booking.
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_booking"),
		},
	}
	if _, err := repo.escrowColl.Indexes().CreateMany(ctx, escrowIndexes); err != nil {
		return fmt.Errorf("failed to create escrow indexes: %w", err)
	}

	walletIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "currency", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_user_currency"),
		},
	}
	if _, err := repo.walletColl.Indexes().CreateMany(ctx, walletIndexes); err != nil {
		return fmt.Errorf("failed to create wallet indexes: %w", err)
	}
	return nil
}

package ledgerRepo

import (
	"context"
	"time"

	"fleetbid/config"
	"fleetbid/database"
	"fleetbid/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoLedgerRepo struct {
	escrowColl *mongo.Collection
	walletColl *mongo.Collection
}

// NewMongoLedgerRepo returns a new LedgerRepository instance using MongoDB.
func NewMongoLedgerRepo() *MongoLedgerRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoLedgerRepo{
		escrowColl: db.Collection("escrow_transactions"),
		walletColl: db.Collection("wallet_balances"),
	}
}

// CreateEscrow inserts a new held escrow transaction. One hold per booking.
func (repo *MongoLedgerRepo) CreateEscrow(ctx context.Context, txn *models.EscrowTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	txn.Status = models.EscrowStatusHeld
	txn.HeldAt = time.Now()
	txn.CreatedAt = txn.HeldAt
	txn.UpdatedAt = txn.HeldAt

	_, err := repo.escrowColl.InsertOne(ctx, txn)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEscrowExists
		}
		return err
	}
	return nil
}

// GetEscrow returns an escrow transaction by its ID.
func (repo *MongoLedgerRepo) GetEscrow(ctx context.Context, id string) (*models.EscrowTransaction, error) {
	var txn models.EscrowTransaction
	err := repo.escrowColl.FindOne(ctx, bson.M{"id": id}).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// GetEscrowByBooking returns the escrow transaction bound to a booking.
func (repo *MongoLedgerRepo) GetEscrowByBooking(ctx context.Context, bookingID string) (*models.EscrowTransaction, error) {
	var txn models.EscrowTransaction
	err := repo.escrowColl.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// buildUpdate translates an EscrowUpdate into the Mongo update document for
// the transition to the given status.
func buildUpdate(to string, upd EscrowUpdate, now time.Time) bson.M {
	set := bson.M{"status": to, "updated_at": now}
	inc := bson.M{}

	if upd.ReleasedInc != 0 {
		inc["released_amount"] = upd.ReleasedInc
	}
	if upd.RefundedInc != 0 {
		inc["refunded_amount"] = upd.RefundedInc
	}
	if upd.AdminNotes != "" {
		set["admin_notes"] = upd.AdminNotes
	}
	if upd.DisputeReason != "" {
		set["dispute_reason"] = upd.DisputeReason
	}
	if upd.StampReleased {
		set["released_at"] = now
	}
	if upd.StampRefunded {
		set["refunded_at"] = now
	}
	if upd.StampDisputed {
		set["disputed_at"] = now
	}
	if upd.StampResolved {
		set["resolved_at"] = now
	}

	update := bson.M{"$set": set}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	return update
}

// buildFilter is the transition guard: status, and when the update carries an
// amounts guard, the released/refunded totals the caller read.
func buildFilter(id string, from []string, upd EscrowUpdate) bson.M {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	if upd.GuardAmounts {
		filter["released_amount"] = upd.PrevReleased
		filter["refunded_amount"] = upd.PrevRefunded
	}
	return filter
}

// Transition applies a status-guarded update with no funds movement
// (dispute open, advisory notes). False means the guard did not match.
func (repo *MongoLedgerRepo) Transition(ctx context.Context, id string, from []string, to string, upd EscrowUpdate) (bool, error) {
	res, err := repo.escrowColl.UpdateOne(ctx, buildFilter(id, from, upd), buildUpdate(to, upd, time.Now()))
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"fleetbid/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommitAcceptance performs the single-winner assignment inside one Mongo
// transaction: the session flips open -> won, the winning offer flips
// pending -> accepted, all other pending offers flip to rejected, and the
// booking is bound to the winning provider. The session update carries the
// status guard, so when two acceptances race the storage layer admits exactly
// one; the loser gets ErrSessionNotOpen.
func (repo *MongoSessionRepo) CommitAcceptance(
	ctx context.Context,
	sessionID, offerID, providerID, bookingID string,
	finalPrice float64,
) error {
	client := repo.sessionColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	now := time.Now()

	txnFn := func(sc mongo.SessionContext) error {
		res, err := repo.sessionColl.UpdateOne(sc,
			bson.M{"id": sessionID, "status": models.SessionStatusOpen},
			bson.M{"$set": bson.M{
				"status":           models.SessionStatusWon,
				"winning_offer_id": offerID,
				"updated_at":       now,
			}},
		)
		if err != nil {
			return fmt.Errorf("session transition failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrSessionNotOpen
		}

		res, err = repo.offerColl.UpdateOne(sc,
			bson.M{"id": offerID, "session_id": sessionID, "status": models.OfferStatusPending},
			bson.M{"$set": bson.M{"status": models.OfferStatusAccepted, "updated_at": now}},
		)
		if err != nil {
			return fmt.Errorf("offer transition failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrOfferNotPending
		}

		if _, err := repo.offerColl.UpdateMany(sc,
			bson.M{"session_id": sessionID, "status": models.OfferStatusPending},
			bson.M{"$set": bson.M{"status": models.OfferStatusRejected, "updated_at": now}},
		); err != nil {
			return fmt.Errorf("rejecting losing offers failed: %w", err)
		}

		if _, err := repo.bookingColl.UpdateOne(sc,
			bson.M{"id": bookingID},
			bson.M{"$set": bson.M{
				"status":               models.BookingStatusAssigned,
				"assigned_provider_id": providerID,
				"final_price":          finalPrice,
				"updated_at":           now,
			}},
		); err != nil {
			return fmt.Errorf("booking assignment failed: %w", err)
		}

		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}

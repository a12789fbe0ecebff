package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"fleetbid/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransitionWithCredits applies a status-guarded escrow update and the wallet
// credits in one Mongo transaction. The guard runs inside the same atomic
// scope as the credits, so a retried release or refund that finds the
// transaction already transitioned moves no funds and reports false.
func (repo *MongoLedgerRepo) TransitionWithCredits(
	ctx context.Context,
	id string,
	from []string,
	to string,
	upd EscrowUpdate,
	credits []models.WalletCredit,
) (bool, error) {
	client := repo.escrowColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return false, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	now := time.Now()
	matched := false

	txnFn := func(sc mongo.SessionContext) error {
		res, err := repo.escrowColl.UpdateOne(sc, buildFilter(id, from, upd), buildUpdate(to, upd, now))
		if err != nil {
			return fmt.Errorf("escrow transition failed: %w", err)
		}
		if res.MatchedCount == 0 {
			// Guard miss is not an error; the caller decides whether this
			// retry is benign.
			return nil
		}
		matched = true

		for _, credit := range credits {
			if credit.Amount == 0 {
				continue
			}
			_, err := repo.walletColl.UpdateOne(sc,
				bson.M{"user_id": credit.UserID, "currency": credit.Currency},
				bson.M{
					"$inc": bson.M{"available": credit.Amount},
					"$set": bson.M{"updated_at": now},
				},
				options.Update().SetUpsert(true),
			)
			if err != nil {
				return fmt.Errorf("wallet credit failed: %w", err)
			}
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
		return false, fmt.Errorf("ledger transaction failed: %w", err)
	}

	return matched, nil
}

// GetWallet returns the wallet balance for a user in a currency. A wallet
// that has never been credited reads as zero.
func (repo *MongoLedgerRepo) GetWallet(ctx context.Context, userID, currency string) (*models.WalletBalance, error) {
	var wallet models.WalletBalance
	err := repo.walletColl.FindOne(ctx, bson.M{"user_id": userID, "currency": currency}).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.WalletBalance{UserID: userID, Currency: currency}, nil
		}
		return nil, err
	}
	return &wallet, nil
}

package offerRepo

import (
	"context"
	"errors"
	"time"

	"fleetbid/config"
	"fleetbid/database"
	"fleetbid/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicatePending is returned when a provider already has a pending offer
// on the same session.
var ErrDuplicatePending = errors.New("provider already has a pending offer on this session")

// ErrOfferNotFound is returned when no offer exists for the given ID.
var ErrOfferNotFound = errors.New("offer not found")

type mongoOfferRepo struct {
	coll *mongo.Collection
}

// NewMongoOfferRepo returns a new OfferRepository instance using MongoDB.
func NewMongoOfferRepo() OfferRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoOfferRepo{
		coll: db.Collection("offers"),
	}
}

// Create inserts a new offer. The partial unique index on
// (session_id, provider_id) over pending offers turns a duplicate submission
// into ErrDuplicatePending without any application-level locking.
func (r *mongoOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if offer.Status == "" {
		offer.Status = models.OfferStatusPending
	}
	offer.CreatedAt = time.Now()
	offer.UpdatedAt = offer.CreatedAt

	_, err := r.coll.InsertOne(ctx, offer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePending
		}
		return err
	}
	return nil
}

// GetByID returns an offer by its ID.
func (r *mongoOfferRepo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&offer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// ListBySession returns all offers for a session in arrival order.
func (r *mongoOfferRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var offers []models.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// Transition moves an offer between statuses with a status guard.
func (r *mongoOfferRepo) Transition(ctx context.Context, id string, from []string, to string) (bool, error) {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RejectPendingBySession rejects every pending offer on a session and returns
// how many were affected. Used on cancellation.
func (r *mongoOfferRepo) RejectPendingBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"session_id": sessionID, "status": models.OfferStatusPending},
		bson.M{"$set": bson.M{"status": models.OfferStatusRejected, "updated_at": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

package sessionRepo

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

type MongoSessionRepo struct {
	sessionColl *mongo.Collection
	offerColl   *mongo.Collection
	bookingColl *mongo.Collection
}

// NewMongoSessionRepo returns a new AuctionSessionRepository instance using MongoDB.
func NewMongoSessionRepo() *MongoSessionRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoSessionRepo{
		sessionColl: db.Collection("auction_sessions"),
		offerColl:   db.Collection("offers"),
		bookingColl: db.Collection("booking_requests"),
	}
}

// Create inserts a new auction session.
func (repo *MongoSessionRepo) Create(ctx context.Context, session *models.AuctionSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt

	_, err := repo.sessionColl.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrOpenSessionExists
		}
		return err
	}
	return nil
}

// GetByID returns an auction session by its ID.
func (repo *MongoSessionRepo) GetByID(ctx context.Context, id string) (*models.AuctionSession, error) {
	var session models.AuctionSession
	err := repo.sessionColl.FindOne(ctx, bson.M{"id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindOpenByBooking returns the open session for a booking, or nil when none exists.
func (repo *MongoSessionRepo) FindOpenByBooking(ctx context.Context, bookingID string) (*models.AuctionSession, error) {
	var session models.AuctionSession
	err := repo.sessionColl.FindOne(ctx, bson.M{
		"booking_id": bookingID,
		"status":     models.SessionStatusOpen,
	}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Transition moves a session between statuses with a status guard. A false
// result means the stored status did not match any of the expected ones.
func (repo *MongoSessionRepo) Transition(ctx context.Context, id string, from []string, to string) (bool, error) {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	res, err := repo.sessionColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ExpireDue transitions every open session whose window has passed to expired
// and returns the sessions it actually transitioned. Sessions raced into won
// or cancelled in the meantime are skipped by the per-document status guard,
// so the sweep is safe to repeat.
func (repo *MongoSessionRepo) ExpireDue(ctx context.Context, now time.Time) ([]models.AuctionSession, error) {
	cursor, err := repo.sessionColl.Find(ctx, bson.M{
		"status":    models.SessionStatusOpen,
		"closes_at": bson.M{"$lte": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var due []models.AuctionSession
	if err := cursor.All(ctx, &due); err != nil {
		return nil, err
	}

	var expired []models.AuctionSession
	for _, session := range due {
		ok, err := repo.Transition(ctx, session.ID, []string{models.SessionStatusOpen}, models.SessionStatusExpired)
		if err != nil {
			return expired, err
		}
		if ok {
			session.Status = models.SessionStatusExpired
			expired = append(expired, session)
		}
	}
	return expired, nil
}

package bookingRepo

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

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a new BookingRequestRepository instance using MongoDB.
func NewMongoBookingRepo() BookingRequestRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoBookingRepo{
		coll: db.Collection("booking_requests"),
	}
}

// Create inserts a new booking request.
func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.BookingRequest) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusCreated
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	_, err := r.coll.InsertOne(ctx, booking)
	return err
}

// GetByID returns a booking request by its ID.
func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	var booking models.BookingRequest
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// Transition moves a booking between statuses with a status guard. A false
// result means the guard did not match the stored status.
func (r *mongoBookingRepo) Transition(ctx context.Context, id string, from []string, to string) (bool, error) {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

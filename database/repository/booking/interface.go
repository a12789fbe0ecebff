package bookingRepo

import (
	"context"

	"fleetbid/models"
)

// BookingRequestRepository is the persistence boundary for booking requests.
// Status transitions are conditional writes: the bool result reports whether
// the guard matched, so callers can distinguish a lost race from an error.
type BookingRequestRepository interface {
	Create(ctx context.Context, booking *models.BookingRequest) error
	GetByID(ctx context.Context, id string) (*models.BookingRequest, error)
	Transition(ctx context.Context, id string, from []string, to string) (bool, error)
}

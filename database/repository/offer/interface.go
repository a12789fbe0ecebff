package offerRepo

import (
	"context"

	"fleetbid/models"
)

// OfferRepository is the persistence boundary for offers. Submission is a
// plain insert guarded only by the unique pending-offer index, so concurrent
// providers never serialize through a common lock. ListBySession preserves
// arrival order for the requester's live view and for audit.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Offer, error)
	Transition(ctx context.Context, id string, from []string, to string) (bool, error)
	RejectPendingBySession(ctx context.Context, sessionID string) (int64, error)
	EnsureIndexes() error
}

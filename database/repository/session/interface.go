package sessionRepo

import (
	"context"
	"time"

	"fleetbid/models"
)

// AuctionSessionRepository is the persistence boundary for auction sessions.
//
// Transition is a status-guarded conditional update; the bool result reports
// whether the guard matched. CommitAcceptance is the single-winner
// arbitration point: it transitions session, winning offer, losing offers and
// booking in one transactional scope, and fails with ErrSessionNotOpen when
// another acceptance (or the expiry sweep) got there first.
type AuctionSessionRepository interface {
	Create(ctx context.Context, session *models.AuctionSession) error
	GetByID(ctx context.Context, id string) (*models.AuctionSession, error)
	FindOpenByBooking(ctx context.Context, bookingID string) (*models.AuctionSession, error)
	Transition(ctx context.Context, id string, from []string, to string) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) ([]models.AuctionSession, error)
	CommitAcceptance(ctx context.Context, sessionID, offerID, providerID, bookingID string, finalPrice float64) error
	EnsureIndexes() error
}

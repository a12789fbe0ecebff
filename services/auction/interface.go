package auction

import (
	"context"
	"time"

	bookingRepo "fleetbid/database/repository/booking"
	offerRepo "fleetbid/database/repository/offer"
	sessionRepo "fleetbid/database/repository/session"
	"fleetbid/models"
	"fleetbid/services/notification"
	"fleetbid/services/wallet"

	"go.uber.org/zap"
)

// OpenSessionInput carries the requester's proposal for a new auction.
// WindowSeconds of zero means the configured default.
type OpenSessionInput struct {
	BookingID     string
	ProposedPrice float64
	WindowSeconds int
}

// SubmitOfferInput carries one provider's response to an open session.
type SubmitOfferInput struct {
	SessionID  string
	ProviderID string
	Price      float64
	Message    string
	Provider   models.ProviderSnapshot
}

// AssignmentResult is the outcome of a successful acceptance.
type AssignmentResult struct {
	SessionID          string  `json:"sessionId"`
	BookingID          string  `json:"bookingId"`
	OfferID            string  `json:"offerId"`
	AssignedProviderID string  `json:"assignedProviderId"`
	FinalPrice         float64 `json:"finalPrice"`
}

// AuctionService owns the lifecycle of price negotiations: session
// open/raise/cancel/expiry on one side, offer submission and the
// single-winner acceptance on the other.
type AuctionService interface {
	OpenSession(ctx context.Context, input OpenSessionInput) (*models.AuctionSession, error)
	RaisePrice(ctx context.Context, sessionID string, newPrice float64) (*models.AuctionSession, error)
	CancelSession(ctx context.Context, sessionID, actorID string) error
	ExpireDue(ctx context.Context, now time.Time) (int, error)
	GetSession(ctx context.Context, sessionID string) (*models.AuctionSession, error)

	SubmitOffer(ctx context.Context, input SubmitOfferInput) (*models.Offer, error)
	AcceptOffer(ctx context.Context, sessionID, offerID, actorID string) (*AssignmentResult, error)
	RejectOffer(ctx context.Context, sessionID, offerID, actorID string) error
	ListOffers(ctx context.Context, sessionID string) ([]models.Offer, error)
}

// DefaultAuctionService is the production implementation.
type DefaultAuctionService struct {
	SessionRepo   sessionRepo.AuctionSessionRepository
	OfferRepo     offerRepo.OfferRepository
	BookingRepo   bookingRepo.BookingRequestRepository
	Balance       wallet.BalanceReader
	Notifier      notification.NotificationService
	Feed          *Broker
	Logger        *zap.Logger
	DefaultWindow time.Duration
}

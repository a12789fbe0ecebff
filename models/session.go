package models

import "time"

// AuctionSession statuses. A superseded session was closed by a price raise
// while still open; an expired one ran out its window. Only "won" and
// "cancelled" are terminal for the underlying booking.
const (
	SessionStatusOpen       = "open"
	SessionStatusExpired    = "expired"
	SessionStatusWon        = "won"
	SessionStatusCancelled  = "cancelled"
	SessionStatusSuperseded = "superseded"
)

// AuctionSession is one open, time-bounded negotiation for a single booking at
// a single proposed price. Raising the price closes the session and opens a
// new one with a fresh window.
type AuctionSession struct {
	ID             string    `bson:"id" json:"id"`
	BookingID      string    `bson:"booking_id" json:"bookingId"`
	ProposedPrice  float64   `bson:"proposed_price" json:"proposedPrice"`
	Currency       string    `bson:"currency" json:"currency"`
	WindowSeconds  int       `bson:"window_seconds" json:"windowSeconds"`
	OpenedAt       time.Time `bson:"opened_at" json:"openedAt"`
	ClosesAt       time.Time `bson:"closes_at" json:"closesAt"`
	Status         string    `bson:"status" json:"status"`
	WinningOfferID string    `bson:"winning_offer_id,omitempty" json:"winningOfferId,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// Open reports whether the session is accepting offers at the given instant.
func (s *AuctionSession) Open(now time.Time) bool {
	return s.Status == SessionStatusOpen && now.Before(s.ClosesAt)
}

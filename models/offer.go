package models

import "time"

// Offer statuses.
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
	OfferStatusExpired  = "expired"
)

// ProviderSnapshot captures provider metadata at submission time so the
// requester's view is stable even if the provider profile changes later.
type ProviderSnapshot struct {
	Rating       float64 `bson:"rating" json:"rating"`
	DistanceKM   float64 `bson:"distance_km" json:"distanceKm"`
	VehicleClass string  `bson:"vehicle_class" json:"vehicleClass"`
}

// Offer is a provider's response to an open auction session. Offers are
// immutable once created except for status transitions, and are kept for
// audit after the session closes.
type Offer struct {
	ID           string           `bson:"id" json:"id"`
	SessionID    string           `bson:"session_id" json:"sessionId"`
	ProviderID   string           `bson:"provider_id" json:"providerId"`
	Price        float64          `bson:"price" json:"price"`
	CounterOffer bool             `bson:"counter_offer" json:"counterOffer"`
	Message      string           `bson:"message,omitempty" json:"message,omitempty"`
	Provider     ProviderSnapshot `bson:"provider" json:"provider"`
	Status       string           `bson:"status" json:"status"`
	CreatedAt    time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `bson:"updated_at" json:"updatedAt"`
}

package models

import "time"

// AuctionInvite is the fan-out payload sent to eligible providers when a
// session opens or reopens at a higher price.
type AuctionInvite struct {
	SessionID     string    `json:"sessionId"`
	BookingID     string    `json:"bookingId"`
	ProposedPrice float64   `json:"proposedPrice"`
	Currency      string    `json:"currency"`
	VehicleClass  string    `json:"vehicleClass"`
	ClosesAt      time.Time `json:"closesAt"`
}

// OutcomeEvent notifies a single party about an auction or escrow transition.
type OutcomeEvent struct {
	Type      string            `json:"type"`
	UserID    string            `json:"userId"`
	SessionID string            `json:"sessionId,omitempty"`
	BookingID string            `json:"bookingId,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// JobCompletedPayload is the task body consumed from the execution/tracking
// component once a job finishes; it triggers the escrow hold.
type JobCompletedPayload struct {
	BookingID string `json:"bookingId"`
}

package models

import "time"

// BookingRequest statuses.
const (
	BookingStatusCreated    = "created"
	BookingStatusSearching  = "searching"
	BookingStatusAssigned   = "assigned"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
)

// BookingRequest is the work unit being auctioned. Origin and destination are
// opaque references owned by the routing layer.
type BookingRequest struct {
	ID                 string    `bson:"id" json:"id"`
	RequesterID        string    `bson:"requester_id" json:"requesterId"`
	OriginRef          string    `bson:"origin_ref" json:"originRef"`
	DestinationRef     string    `bson:"destination_ref" json:"destinationRef"`
	EstimatedPrice     float64   `bson:"estimated_price" json:"estimatedPrice"`
	FinalPrice         float64   `bson:"final_price,omitempty" json:"finalPrice,omitempty"`
	Currency           string    `bson:"currency" json:"currency"`
	VehicleClass       string    `bson:"vehicle_class" json:"vehicleClass"`
	Status             string    `bson:"status" json:"status"`
	AssignedProviderID string    `bson:"assigned_provider_id,omitempty" json:"assignedProviderId,omitempty"`
	CreatedAt          time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updatedAt"`
}

package models

import "time"

// EscrowTransaction statuses.
const (
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
	EscrowStatusDisputed = "disputed"
	EscrowStatusResolved = "resolved"
)

// EscrowTransaction is the funds-custody record tied 1:1 to a completed
// assignment. HeldAmount is immutable after creation and always equals
// SellerAmount + PlatformFee. ReleasedAmount and RefundedAmount accumulate
// across partial settlements.
type EscrowTransaction struct {
	ID             string     `bson:"id" json:"id"`
	BookingID      string     `bson:"booking_id" json:"bookingId"`
	BuyerID        string     `bson:"buyer_id" json:"buyerId"`
	SellerID       string     `bson:"seller_id" json:"sellerId"`
	HeldAmount     float64    `bson:"held_amount" json:"heldAmount"`
	PlatformFee    float64    `bson:"platform_fee" json:"platformFee"`
	SellerAmount   float64    `bson:"seller_amount" json:"sellerAmount"`
	ReleasedAmount float64    `bson:"released_amount" json:"releasedAmount"`
	RefundedAmount float64    `bson:"refunded_amount" json:"refundedAmount"`
	Currency       string     `bson:"currency" json:"currency"`
	Status         string     `bson:"status" json:"status"`
	DisputeReason  string     `bson:"dispute_reason,omitempty" json:"disputeReason,omitempty"`
	AdminNotes     string     `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	HeldAt         time.Time  `bson:"held_at" json:"heldAt"`
	ReleasedAt     *time.Time `bson:"released_at,omitempty" json:"releasedAt,omitempty"`
	RefundedAt     *time.Time `bson:"refunded_at,omitempty" json:"refundedAt,omitempty"`
	DisputedAt     *time.Time `bson:"disputed_at,omitempty" json:"disputedAt,omitempty"`
	ResolvedAt     *time.Time `bson:"resolved_at,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updatedAt"`
}

// Terminal reports whether no further funds movement is possible.
func (t *EscrowTransaction) Terminal() bool {
	switch t.Status {
	case EscrowStatusReleased, EscrowStatusRefunded, EscrowStatusResolved:
		return true
	}
	return false
}

// Remaining returns the held amount not yet released or refunded.
func (t *EscrowTransaction) Remaining() float64 {
	return t.HeldAmount - t.ReleasedAmount - t.RefundedAmount
}

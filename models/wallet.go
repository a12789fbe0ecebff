package models

import "time"

// WalletBalance is one user's balance in one currency. It is only ever
// adjusted through a successful escrow transition and never driven below
// zero by this core.
type WalletBalance struct {
	UserID    string    `bson:"user_id" json:"userId"`
	Currency  string    `bson:"currency" json:"currency"`
	Available float64   `bson:"available" json:"available"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// WalletCredit describes a single wallet adjustment applied together with an
// escrow status transition.
type WalletCredit struct {
	UserID   string
	Currency string
	Amount   float64
}

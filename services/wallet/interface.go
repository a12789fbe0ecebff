package wallet

import (
	"context"

	"fleetbid/models"
)

// BalanceReader is the read-only view the auction layer uses for its
// pre-open funds check. The auction never mutates balances.
type BalanceReader interface {
	Available(ctx context.Context, userID, currency string) (float64, error)
}

// WalletService exposes balances and top-up intents.
type WalletService interface {
	BalanceReader
	GetBalance(ctx context.Context, userID, currency string) (*models.WalletBalance, error)
	CreateTopUpIntent(ctx context.Context, userID, currency string, amount float64) (*TopUpIntent, error)
}

// TopUpIntent is the client-side handle for completing a wallet top-up.
type TopUpIntent struct {
	IntentID     string  `json:"intentId"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

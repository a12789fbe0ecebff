package wallet

import (
	"context"
	"errors"
	"math"
	"strings"

	ledgerRepo "fleetbid/database/repository/ledger"
	"fleetbid/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// DefaultWalletService reads balances from the ledger and creates Stripe
// payment intents for top-ups. The intent is confirmed client-side; the
// resulting credit lands through the payments webhook pipeline, not here.
type DefaultWalletService struct {
	Ledger ledgerRepo.LedgerRepository
	Logger *zap.Logger
}

// Available returns the spendable balance for a user in a currency.
func (s *DefaultWalletService) Available(ctx context.Context, userID, currency string) (float64, error) {
	balance, err := s.Ledger.GetWallet(ctx, userID, currency)
	if err != nil {
		return 0, err
	}
	return balance.Available, nil
}

// GetBalance returns the full wallet record.
func (s *DefaultWalletService) GetBalance(ctx context.Context, userID, currency string) (*models.WalletBalance, error) {
	return s.Ledger.GetWallet(ctx, userID, currency)
}

// CreateTopUpIntent creates a Stripe PaymentIntent for funding the wallet.
func (s *DefaultWalletService) CreateTopUpIntent(ctx context.Context, userID, currency string, amount float64) (*TopUpIntent, error) {
	if amount <= 0 {
		return nil, errors.New("top-up amount must be positive")
	}
	if userID == "" {
		return nil, errors.New("missing user ID")
	}
	if currency == "" {
		currency = "USD"
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(strings.ToLower(currency)),
		Metadata: map[string]string{
			"userId":  userID,
			"purpose": "wallet_topup",
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("wallet top-up intent created",
		zap.String("userId", userID),
		zap.String("intentId", intent.ID))

	return &TopUpIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     currency,
	}, nil
}

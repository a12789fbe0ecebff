package escrow

import (
	"context"

	ledgerRepo "fleetbid/database/repository/ledger"
	"fleetbid/models"
	"fleetbid/services/notification"

	"go.uber.org/zap"
)

// CreateHoldInput describes the custody checkpoint taken when a job
// completes. No held record means no work may start in the surrounding
// system, so this precedes every settlement.
type CreateHoldInput struct {
	BookingID string
	BuyerID   string
	SellerID  string
	Amount    float64
	FeeRate   float64
	Currency  string
}

// Resolution directs a dispute's payout. SellerAmount and BuyerRefund must
// sum to the escrow's remaining balance; either side may be zero.
type Resolution struct {
	SellerAmount float64
	BuyerRefund  float64
	Notes        string
}

// SettlementResult is the outcome of a funds-moving operation: the updated
// escrow record and the credited wallet (nil when the retry was a no-op).
type SettlementResult struct {
	Escrow *models.EscrowTransaction `json:"escrow"`
	Wallet *models.WalletBalance     `json:"wallet,omitempty"`
}

// EscrowService moves held funds through release/refund/dispute/resolve.
// All funds-moving transitions are atomic with their wallet credits, and
// release/refund are safe to retry.
type EscrowService interface {
	CreateHold(ctx context.Context, input CreateHoldInput) (*models.EscrowTransaction, error)
	Release(ctx context.Context, escrowID, actorID string, amount float64) (*SettlementResult, error)
	Refund(ctx context.Context, escrowID, actorID string, amount float64) (*SettlementResult, error)
	OpenDispute(ctx context.Context, escrowID, actorID, reason string) (*models.EscrowTransaction, error)
	ResolveDispute(ctx context.Context, escrowID, actorID string, resolution Resolution) (*models.EscrowTransaction, error)
	GetTransaction(ctx context.Context, escrowID string) (*models.EscrowTransaction, error)
}

// DefaultEscrowService is the production implementation.
type DefaultEscrowService struct {
	Ledger   ledgerRepo.LedgerRepository
	Notifier notification.NotificationService
	Logger   *zap.Logger
}

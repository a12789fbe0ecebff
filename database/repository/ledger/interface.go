package ledgerRepo

import (
	"context"

	"fleetbid/models"
)

// EscrowUpdate describes the field changes applied alongside an escrow status
// transition. Increment fields accumulate across partial settlements.
//
// When GuardAmounts is set, the transition additionally requires the stored
// released and refunded totals to equal PrevReleased and PrevRefunded. Two
// concurrent partial settlements both match a held-to-held status guard; the
// amounts guard makes the second one miss instead of double-crediting.
type EscrowUpdate struct {
	ReleasedInc   float64
	RefundedInc   float64
	AdminNotes    string
	DisputeReason string
	StampReleased bool
	StampRefunded bool
	StampDisputed bool
	StampResolved bool
	GuardAmounts  bool
	PrevReleased  float64
	PrevRefunded  float64
}

// LedgerRepository is the durable, transactional record of escrow
// transactions and wallet balances.
//
// TransitionWithCredits is the only funds-moving primitive: it applies a
// status-guarded update to one escrow transaction and the associated wallet
// credits inside a single Mongo transaction, so a ledger write can never land
// without its wallet credit. A false result means the status guard did not
// match — the idempotent-retry path, with no funds moved.
type LedgerRepository interface {
	CreateEscrow(ctx context.Context, txn *models.EscrowTransaction) error
	GetEscrow(ctx context.Context, id string) (*models.EscrowTransaction, error)
	GetEscrowByBooking(ctx context.Context, bookingID string) (*models.EscrowTransaction, error)
	Transition(ctx context.Context, id string, from []string, to string, upd EscrowUpdate) (bool, error)
	TransitionWithCredits(ctx context.Context, id string, from []string, to string, upd EscrowUpdate, credits []models.WalletCredit) (bool, error)
	GetWallet(ctx context.Context, userID, currency string) (*models.WalletBalance, error)
}

package escrow

import (
	"context"
	"sync"
	"time"

	ledgerRepo "fleetbid/database/repository/ledger"
	"fleetbid/models"

	"github.com/google/uuid"
)

// fakeLedger is an in-memory LedgerRepository with the same guard semantics
// as the Mongo implementation: transitions only apply when the current
// status matches, and credits land together with the transition or not at
// all.
type fakeLedger struct {
	mu      sync.Mutex
	escrows map[string]*models.EscrowTransaction
	byBook  map[string]string
	wallets map[string]float64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		escrows: make(map[string]*models.EscrowTransaction),
		byBook:  make(map[string]string),
		wallets: make(map[string]float64),
	}
}

func walletKey(userID, currency string) string {
	return userID + "/" + currency
}

func (f *fakeLedger) CreateEscrow(ctx context.Context, txn *models.EscrowTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byBook[txn.BookingID]; exists {
		return ledgerRepo.ErrEscrowExists
	}
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	txn.Status = models.EscrowStatusHeld
	txn.HeldAt = time.Now()
	txn.CreatedAt = txn.HeldAt
	txn.UpdatedAt = txn.HeldAt
	cp := *txn
	f.escrows[txn.ID] = &cp
	f.byBook[txn.BookingID] = txn.ID
	return nil
}

func (f *fakeLedger) GetEscrow(ctx context.Context, id string) (*models.EscrowTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.escrows[id]
	if !ok {
		return nil, ledgerRepo.ErrEscrowNotFound
	}
	cp := *txn
	return &cp, nil
}

func (f *fakeLedger) GetEscrowByBooking(ctx context.Context, bookingID string) (*models.EscrowTransaction, error) {
	f.mu.Lock()
	id, ok := f.byBook[bookingID]
	f.mu.Unlock()
	if !ok {
		return nil, ledgerRepo.ErrEscrowNotFound
	}
	return f.GetEscrow(ctx, id)
}

func (f *fakeLedger) Transition(ctx context.Context, id string, from []string, to string, upd ledgerRepo.EscrowUpdate) (bool, error) {
	return f.TransitionWithCredits(ctx, id, from, to, upd, nil)
}

func (f *fakeLedger) TransitionWithCredits(ctx context.Context, id string, from []string, to string, upd ledgerRepo.EscrowUpdate, credits []models.WalletCredit) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	txn, ok := f.escrows[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if txn.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	if upd.GuardAmounts && (txn.ReleasedAmount != upd.PrevReleased || txn.RefundedAmount != upd.PrevRefunded) {
		return false, nil
	}

	now := time.Now()
	txn.Status = to
	txn.UpdatedAt = now
	txn.ReleasedAmount += upd.ReleasedInc
	txn.RefundedAmount += upd.RefundedInc
	if upd.AdminNotes != "" {
		txn.AdminNotes = upd.AdminNotes
	}
	if upd.DisputeReason != "" {
		txn.DisputeReason = upd.DisputeReason
	}
	if upd.StampReleased {
		txn.ReleasedAt = &now
	}
	if upd.StampRefunded {
		txn.RefundedAt = &now
	}
	if upd.StampDisputed {
		txn.DisputedAt = &now
	}
	if upd.StampResolved {
		txn.ResolvedAt = &now
	}

	for _, c := range credits {
		f.wallets[walletKey(c.UserID, c.Currency)] += c.Amount
	}
	return true, nil
}

func (f *fakeLedger) GetWallet(ctx context.Context, userID, currency string) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.WalletBalance{
		UserID:    userID,
		Currency:  currency,
		Available: f.wallets[walletKey(userID, currency)],
	}, nil
}

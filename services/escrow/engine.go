package escrow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	ledgerRepo "fleetbid/database/repository/ledger"
	"fleetbid/models"

	"go.uber.org/zap"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateHold records the custody checkpoint for a completed assignment.
// sellerAmount + fee always equals the held amount exactly.
func (s *DefaultEscrowService) CreateHold(ctx context.Context, input CreateHoldInput) (*models.EscrowTransaction, error) {
	if input.Amount <= 0 {
		return nil, NewInvalidState("hold amount must be positive")
	}
	if input.FeeRate < 0 || input.FeeRate >= 1 {
		return nil, NewInvalidState("fee rate must be in [0, 1)")
	}
	if input.BuyerID == "" || input.SellerID == "" {
		return nil, NewInvalidState("buyer and seller are required")
	}

	fee := round2(input.Amount * input.FeeRate)
	txn := &models.EscrowTransaction{
		BookingID:    input.BookingID,
		BuyerID:      input.BuyerID,
		SellerID:     input.SellerID,
		HeldAmount:   input.Amount,
		PlatformFee:  fee,
		SellerAmount: round2(input.Amount - fee),
		Currency:     input.Currency,
	}
	if err := s.Ledger.CreateEscrow(ctx, txn); err != nil {
		if errors.Is(err, ledgerRepo.ErrEscrowExists) {
			// At-least-once delivery of the completion signal: the hold is
			// already in place, return it.
			return s.Ledger.GetEscrowByBooking(ctx, input.BookingID)
		}
		return nil, err
	}

	s.Logger.Info("escrow hold created",
		zap.String("escrowId", txn.ID),
		zap.String("bookingId", txn.BookingID),
		zap.Float64("held", txn.HeldAmount))
	return txn, nil
}

// Release credits the seller. Amount zero means the full remaining balance.
// The platform fee is charged proportionally to the released share, so a
// release following a partial refund still closes the books exactly.
// Retrying a release on an already-released transaction succeeds with no
// additional balance change.
func (s *DefaultEscrowService) Release(ctx context.Context, escrowID, actorID string, amount float64) (*SettlementResult, error) {
	txn, err := s.getTransaction(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if txn.Status == models.EscrowStatusReleased {
		return &SettlementResult{Escrow: txn}, nil
	}
	if txn.Terminal() {
		return nil, NewTerminalState(fmt.Sprintf("escrow is %s, no further release is possible", txn.Status))
	}
	if txn.Status == models.EscrowStatusDisputed {
		return nil, NewInvalidState("escrow is disputed, funds move only through dispute resolution")
	}
	if txn.Status != models.EscrowStatusHeld {
		return nil, NewInvalidState(fmt.Sprintf("escrow is %s, only held funds can be released", txn.Status))
	}

	remaining := round2(txn.Remaining())
	if amount == 0 {
		amount = remaining
	}
	if amount < 0 || amount > remaining {
		return nil, NewInsufficientFunds(fmt.Sprintf("release of %.2f exceeds remaining %.2f", amount, remaining))
	}

	feeShare := 0.0
	if txn.HeldAmount > 0 {
		feeShare = round2(txn.PlatformFee * amount / txn.HeldAmount)
	}
	credit := round2(amount - feeShare)

	to := txn.Status
	stamp := false
	if round2(remaining-amount) == 0 {
		to = models.EscrowStatusReleased
		stamp = true
	}

	matched, err := s.Ledger.TransitionWithCredits(ctx, txn.ID,
		[]string{txn.Status}, to,
		ledgerRepo.EscrowUpdate{
			ReleasedInc:   amount,
			StampReleased: stamp,
			GuardAmounts:  true,
			PrevReleased:  txn.ReleasedAmount,
			PrevRefunded:  txn.RefundedAmount,
		},
		[]models.WalletCredit{{UserID: txn.SellerID, Currency: txn.Currency, Amount: credit}},
	)
	if err != nil {
		return nil, err
	}
	if !matched {
		// Raced with another settlement; re-read and report idempotently.
		return s.settledResult(ctx, txn.ID, models.EscrowStatusReleased, "release")
	}

	s.Logger.Info("escrow released",
		zap.String("escrowId", txn.ID),
		zap.String("actor", actorID),
		zap.Float64("credited", credit))
	s.notifySettlement(txn, "escrow_released", txn.SellerID)

	return s.result(ctx, txn.ID, txn.SellerID, txn.Currency)
}

// Refund credits the buyer. Amount zero means the full remaining balance; a
// partial refund leaves the transaction open so the remainder can be
// released to the seller as a separate operation. Retrying a refund on an
// already-refunded transaction succeeds with no additional balance change.
func (s *DefaultEscrowService) Refund(ctx context.Context, escrowID, actorID string, amount float64) (*SettlementResult, error) {
	txn, err := s.getTransaction(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if txn.Status == models.EscrowStatusRefunded {
		return &SettlementResult{Escrow: txn}, nil
	}
	if txn.Terminal() {
		return nil, NewTerminalState(fmt.Sprintf("escrow is %s, no further refund is possible", txn.Status))
	}
	if txn.Status == models.EscrowStatusDisputed {
		return nil, NewInvalidState("escrow is disputed, funds move only through dispute resolution")
	}
	if txn.Status != models.EscrowStatusHeld {
		return nil, NewInvalidState(fmt.Sprintf("escrow is %s, only held funds can be refunded", txn.Status))
	}

	remaining := round2(txn.Remaining())
	if amount == 0 {
		amount = remaining
	}
	if amount < 0 || amount > remaining {
		return nil, NewInsufficientFunds(fmt.Sprintf("refund of %.2f exceeds remaining %.2f", amount, remaining))
	}

	to := txn.Status
	stamp := false
	if round2(remaining-amount) == 0 {
		to = models.EscrowStatusRefunded
		stamp = true
	}

	matched, err := s.Ledger.TransitionWithCredits(ctx, txn.ID,
		[]string{txn.Status}, to,
		ledgerRepo.EscrowUpdate{
			RefundedInc:   amount,
			StampRefunded: stamp,
			GuardAmounts:  true,
			PrevReleased:  txn.ReleasedAmount,
			PrevRefunded:  txn.RefundedAmount,
		},
		[]models.WalletCredit{{UserID: txn.BuyerID, Currency: txn.Currency, Amount: amount}},
	)
	if err != nil {
		return nil, err
	}
	if !matched {
		return s.settledResult(ctx, txn.ID, models.EscrowStatusRefunded, "refund")
	}

	s.Logger.Info("escrow refunded",
		zap.String("escrowId", txn.ID),
		zap.String("actor", actorID),
		zap.Float64("credited", amount))
	s.notifySettlement(txn, "escrow_refunded", txn.BuyerID)

	return s.result(ctx, txn.ID, txn.BuyerID, txn.Currency)
}

// OpenDispute freezes a held transaction for administrative resolution.
// No funds move.
func (s *DefaultEscrowService) OpenDispute(ctx context.Context, escrowID, actorID, reason string) (*models.EscrowTransaction, error) {
	if reason == "" {
		return nil, NewInvalidState("dispute reason is required")
	}

	txn, err := s.getTransaction(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if txn.Terminal() {
		return nil, NewTerminalState(fmt.Sprintf("escrow is %s, disputes can no longer be opened", txn.Status))
	}

	ok, err := s.Ledger.Transition(ctx, txn.ID,
		[]string{models.EscrowStatusHeld}, models.EscrowStatusDisputed,
		ledgerRepo.EscrowUpdate{DisputeReason: reason, StampDisputed: true})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewInvalidState(fmt.Sprintf("escrow is %s, only held funds can be disputed", txn.Status))
	}

	s.Logger.Info("escrow dispute opened",
		zap.String("escrowId", txn.ID),
		zap.String("actor", actorID))
	s.notifySettlement(txn, "escrow_disputed", txn.SellerID)

	return s.getTransaction(ctx, escrowID)
}

// ResolveDispute is the only path that consumes a disputed record. The
// resolution's amounts must sum to the remaining balance; both credits and
// the transition to resolved land in one atomic scope. No platform fee is
// charged on resolution payouts.
func (s *DefaultEscrowService) ResolveDispute(ctx context.Context, escrowID, actorID string, resolution Resolution) (*models.EscrowTransaction, error) {
	txn, err := s.getTransaction(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if txn.Terminal() {
		return nil, NewTerminalState(fmt.Sprintf("escrow is %s, resolution is no longer possible", txn.Status))
	}
	if txn.Status != models.EscrowStatusDisputed {
		return nil, NewInvalidState(fmt.Sprintf("escrow is %s, only a disputed transaction can be resolved", txn.Status))
	}

	if resolution.SellerAmount < 0 || resolution.BuyerRefund < 0 {
		return nil, NewInvalidState("resolution amounts must be non-negative")
	}
	remaining := round2(txn.Remaining())
	if round2(resolution.SellerAmount+resolution.BuyerRefund) != remaining {
		return nil, NewInvalidState(fmt.Sprintf(
			"resolution amounts %.2f + %.2f must sum to remaining %.2f",
			resolution.SellerAmount, resolution.BuyerRefund, remaining))
	}

	upd := ledgerRepo.EscrowUpdate{
		ReleasedInc:   resolution.SellerAmount,
		RefundedInc:   resolution.BuyerRefund,
		AdminNotes:    resolution.Notes,
		StampResolved: true,
		GuardAmounts:  true,
		PrevReleased:  txn.ReleasedAmount,
		PrevRefunded:  txn.RefundedAmount,
	}
	if resolution.SellerAmount > 0 {
		upd.StampReleased = true
	}
	if resolution.BuyerRefund > 0 {
		upd.StampRefunded = true
	}

	matched, err := s.Ledger.TransitionWithCredits(ctx, txn.ID,
		[]string{models.EscrowStatusDisputed}, models.EscrowStatusResolved, upd,
		[]models.WalletCredit{
			{UserID: txn.SellerID, Currency: txn.Currency, Amount: resolution.SellerAmount},
			{UserID: txn.BuyerID, Currency: txn.Currency, Amount: resolution.BuyerRefund},
		},
	)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, NewTerminalState("escrow was resolved concurrently")
	}

	s.Logger.Info("escrow dispute resolved",
		zap.String("escrowId", txn.ID),
		zap.String("actor", actorID),
		zap.Float64("seller", resolution.SellerAmount),
		zap.Float64("buyer", resolution.BuyerRefund))
	s.notifySettlement(txn, "escrow_resolved", txn.BuyerID)

	return s.getTransaction(ctx, escrowID)
}

// GetTransaction returns one escrow transaction by ID.
func (s *DefaultEscrowService) GetTransaction(ctx context.Context, escrowID string) (*models.EscrowTransaction, error) {
	return s.getTransaction(ctx, escrowID)
}

func (s *DefaultEscrowService) getTransaction(ctx context.Context, escrowID string) (*models.EscrowTransaction, error) {
	txn, err := s.Ledger.GetEscrow(ctx, escrowID)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrEscrowNotFound) {
			return nil, NewNotFound(fmt.Sprintf("escrow transaction %s not found", escrowID))
		}
		return nil, err
	}
	return txn, nil
}

// settledResult handles the guard-miss path of a settlement: a concurrent
// call moved funds first. If the record landed in the status this operation
// targets, the retry is benign. A record that is still open lost an amounts
// race to a concurrent partial settlement; the caller must re-read and
// decide against the new balance.
func (s *DefaultEscrowService) settledResult(ctx context.Context, escrowID, wantStatus, op string) (*SettlementResult, error) {
	txn, err := s.getTransaction(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if txn.Status == wantStatus {
		return &SettlementResult{Escrow: txn}, nil
	}
	if txn.Terminal() {
		return nil, NewTerminalState(fmt.Sprintf("escrow is %s, %s is no longer possible", txn.Status, op))
	}
	return nil, NewInvalidState(fmt.Sprintf("escrow changed concurrently, %s must be retried against the current balance", op))
}

func (s *DefaultEscrowService) result(ctx context.Context, escrowID, userID, currency string) (*SettlementResult, error) {
	txn, err := s.getTransaction(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.Ledger.GetWallet(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	return &SettlementResult{Escrow: txn, Wallet: wallet}, nil
}

func (s *DefaultEscrowService) notifySettlement(txn *models.EscrowTransaction, eventType, userID string) {
	if s.Notifier == nil {
		return
	}
	event := models.OutcomeEvent{
		Type:      eventType,
		UserID:    userID,
		BookingID: txn.BookingID,
		Data:      map[string]string{"escrowId": txn.ID},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Notifier.NotifyOutcome(ctx, event); err != nil {
			s.Logger.Warn("settlement notification failed",
				zap.String("type", eventType), zap.Error(err))
		}
	}()
}

package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "fleetbid/database/repository/booking"
	sessionRepo "fleetbid/database/repository/session"
	"fleetbid/models"

	"go.uber.org/zap"
)

// OpenSession creates a new auction session for a booking and fans the
// invitation out to eligible providers. The requester's available balance
// must cover the proposed price; the balance is read, never mutated, here.
func (s *DefaultAuctionService) OpenSession(ctx context.Context, input OpenSessionInput) (*models.AuctionSession, error) {
	if input.ProposedPrice <= 0 {
		return nil, NewInvalidState("proposed price must be positive")
	}

	booking, err := s.BookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, NewNotFound(fmt.Sprintf("booking %s not found", input.BookingID))
		}
		return nil, err
	}
	if booking.Status != models.BookingStatusCreated && booking.Status != models.BookingStatusSearching {
		return nil, NewInvalidState(fmt.Sprintf("booking is %s, cannot open an auction", booking.Status))
	}

	existing, err := s.SessionRepo.FindOpenByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewInvalidState(fmt.Sprintf("session %s is already open for this booking", existing.ID))
	}

	available, err := s.Balance.Available(ctx, booking.RequesterID, booking.Currency)
	if err != nil {
		return nil, err
	}
	if available < input.ProposedPrice {
		return nil, NewInsufficientFunds(fmt.Sprintf("available %.2f is below proposed price %.2f", available, input.ProposedPrice))
	}

	session, err := s.openAt(ctx, booking, input.ProposedPrice, input.WindowSeconds)
	if err != nil {
		return nil, err
	}

	if _, err := s.BookingRepo.Transition(ctx, booking.ID,
		[]string{models.BookingStatusCreated, models.BookingStatusSearching},
		models.BookingStatusSearching); err != nil {
		return nil, err
	}

	s.fanOutInvite(session, booking)
	return session, nil
}

// openAt creates the session record with a fresh window.
func (s *DefaultAuctionService) openAt(ctx context.Context, booking *models.BookingRequest, price float64, windowSeconds int) (*models.AuctionSession, error) {
	window := s.DefaultWindow
	if windowSeconds > 0 {
		window = time.Duration(windowSeconds) * time.Second
	}
	if window <= 0 {
		window = 300 * time.Second
	}

	now := time.Now()
	session := &models.AuctionSession{
		BookingID:     booking.ID,
		ProposedPrice: price,
		Currency:      booking.Currency,
		WindowSeconds: int(window / time.Second),
		OpenedAt:      now,
		ClosesAt:      now.Add(window),
		Status:        models.SessionStatusOpen,
	}
	if err := s.SessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, sessionRepo.ErrOpenSessionExists) {
			// The unique open-session index caught a concurrent open that
			// the pre-check could not see.
			return nil, NewInvalidState("a session is already open for this booking")
		}
		return nil, err
	}
	return session, nil
}

// RaisePrice closes the current session and atomically opens a new one with
// the higher price and a fresh window. This is the only retry path; raising
// after expiry is allowed.
func (s *DefaultAuctionService) RaisePrice(ctx context.Context, sessionID string, newPrice float64) (*models.AuctionSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusOpen && session.Status != models.SessionStatusExpired {
		return nil, NewInvalidState(fmt.Sprintf("session is %s, price can only be raised on an open or expired session", session.Status))
	}
	if newPrice <= session.ProposedPrice {
		return nil, NewInvalidState(fmt.Sprintf("new price %.2f must exceed current proposed price %.2f", newPrice, session.ProposedPrice))
	}

	booking, err := s.BookingRepo.GetByID(ctx, session.BookingID)
	if err != nil {
		return nil, err
	}

	// A raise on a stale expired session must pass the same gate as a fresh
	// open: the booking is still auctionable and no successor session is
	// already open, otherwise two sessions could run at once and the price
	// could step backwards across them.
	if booking.Status != models.BookingStatusCreated && booking.Status != models.BookingStatusSearching {
		return nil, NewInvalidState(fmt.Sprintf("booking is %s, price can no longer be raised", booking.Status))
	}
	existing, err := s.SessionRepo.FindOpenByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != session.ID {
		return nil, NewInvalidState(fmt.Sprintf("session %s is already open for this booking", existing.ID))
	}

	// A still-open session is superseded by the raise; an expired one keeps
	// its status. Losing this guard to the expiry sweep is harmless: the
	// session ends up expired and the raise proceeds either way.
	if session.Status == models.SessionStatusOpen {
		if _, err := s.SessionRepo.Transition(ctx, session.ID,
			[]string{models.SessionStatusOpen}, models.SessionStatusSuperseded); err != nil {
			return nil, err
		}
		if _, err := s.OfferRepo.RejectPendingBySession(ctx, session.ID); err != nil {
			return nil, err
		}
	}

	next, err := s.openAt(ctx, booking, newPrice, 0)
	if err != nil {
		return nil, err
	}

	s.Feed.Publish(session.ID, FeedEvent{Type: FeedSessionSuperseded, SessionID: session.ID, Data: map[string]string{"nextSessionId": next.ID}})
	s.fanOutInvite(next, booking)
	return next, nil
}

// CancelSession transitions an open session to cancelled. Only the requester
// who owns the booking may cancel; pending offers are rejected.
func (s *DefaultAuctionService) CancelSession(ctx context.Context, sessionID, actorID string) error {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	booking, err := s.BookingRepo.GetByID(ctx, session.BookingID)
	if err != nil {
		return err
	}
	if booking.RequesterID != actorID {
		return NewForbidden("only the requester may cancel the session")
	}

	ok, err := s.SessionRepo.Transition(ctx, session.ID,
		[]string{models.SessionStatusOpen}, models.SessionStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return NewInvalidState(fmt.Sprintf("session is %s, only an open session can be cancelled", session.Status))
	}

	if _, err := s.OfferRepo.RejectPendingBySession(ctx, session.ID); err != nil {
		return err
	}
	if _, err := s.BookingRepo.Transition(ctx, booking.ID,
		[]string{models.BookingStatusSearching}, models.BookingStatusCreated); err != nil {
		return err
	}

	s.Feed.Publish(session.ID, FeedEvent{Type: FeedSessionCancelled, SessionID: session.ID})
	s.Feed.CloseSession(session.ID)
	return nil
}

// ExpireDue transitions every open session whose window has passed to
// expired. The per-session status guard makes the sweep idempotent: a
// session that was just won or cancelled is left untouched, and repeating
// the sweep produces no second notification.
func (s *DefaultAuctionService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.SessionRepo.ExpireDue(ctx, now)
	if err != nil {
		return len(expired), err
	}

	for _, session := range expired {
		s.Feed.Publish(session.ID, FeedEvent{Type: FeedSessionExpired, SessionID: session.ID})

		booking, err := s.BookingRepo.GetByID(ctx, session.BookingID)
		if err != nil {
			s.Logger.Warn("expiry: booking lookup failed",
				zap.String("sessionId", session.ID), zap.Error(err))
			continue
		}
		s.notifyOutcome(models.OutcomeEvent{
			Type:      "session_expired",
			UserID:    booking.RequesterID,
			SessionID: session.ID,
			BookingID: booking.ID,
		})
	}
	return len(expired), nil
}

// GetSession returns one session by ID.
func (s *DefaultAuctionService) GetSession(ctx context.Context, sessionID string) (*models.AuctionSession, error) {
	return s.getSession(ctx, sessionID)
}

func (s *DefaultAuctionService) getSession(ctx context.Context, sessionID string) (*models.AuctionSession, error) {
	session, err := s.SessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, NewNotFound(fmt.Sprintf("session %s not found", sessionID))
		}
		return nil, err
	}
	return session, nil
}

// fanOutInvite asks the gateway to invite the eligible provider pool.
// Fire-and-forget: a failed fan-out does not roll back session creation.
func (s *DefaultAuctionService) fanOutInvite(session *models.AuctionSession, booking *models.BookingRequest) {
	invite := models.AuctionInvite{
		SessionID:     session.ID,
		BookingID:     booking.ID,
		ProposedPrice: session.ProposedPrice,
		Currency:      session.Currency,
		VehicleClass:  booking.VehicleClass,
		ClosesAt:      session.ClosesAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Notifier.NotifyAuctionOpened(ctx, invite); err != nil {
			s.Logger.Warn("auction invite fan-out failed",
				zap.String("sessionId", session.ID), zap.Error(err))
		}
	}()
}

func (s *DefaultAuctionService) notifyOutcome(event models.OutcomeEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Notifier.NotifyOutcome(ctx, event); err != nil {
			s.Logger.Warn("outcome notification failed",
				zap.String("type", event.Type), zap.Error(err))
		}
	}()
}

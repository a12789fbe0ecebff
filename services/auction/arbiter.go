package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	offerRepo "fleetbid/database/repository/offer"
	sessionRepo "fleetbid/database/repository/session"
	"fleetbid/models"
)

// SubmitOffer records one provider's offer on an open session. Submission is
// fully concurrent: each offer is an independent insert, and the storage
// layer's unique pending index is the only duplicate guard. The window is
// re-validated server-side; the client's clock is never trusted.
func (s *DefaultAuctionService) SubmitOffer(ctx context.Context, input SubmitOfferInput) (*models.Offer, error) {
	if input.Price <= 0 {
		return nil, NewInvalidState("offered price must be positive")
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Open(time.Now()) {
		return nil, NewInvalidState(fmt.Sprintf("session is not accepting offers (status %s)", session.Status))
	}

	offer := &models.Offer{
		SessionID:    session.ID,
		ProviderID:   input.ProviderID,
		Price:        input.Price,
		CounterOffer: input.Price != session.ProposedPrice,
		Message:      input.Message,
		Provider:     input.Provider,
		Status:       models.OfferStatusPending,
	}
	if err := s.OfferRepo.Create(ctx, offer); err != nil {
		if errors.Is(err, offerRepo.ErrDuplicatePending) {
			return nil, NewInvalidState("provider already has a pending offer on this session")
		}
		return nil, err
	}

	s.Feed.Publish(session.ID, FeedEvent{
		Type:      FeedOfferSubmitted,
		SessionID: session.ID,
		OfferID:   offer.ID,
		Data: map[string]string{
			"providerId": offer.ProviderID,
			"price":      fmt.Sprintf("%.2f", offer.Price),
		},
	})
	return offer, nil
}

// AcceptOffer commits the assignment. Exactly one acceptance can succeed per
// session: the storage layer's guarded transition, not application locking,
// arbitrates the race, and the loser gets SessionAlreadyWon.
func (s *DefaultAuctionService) AcceptOffer(ctx context.Context, sessionID, offerID, actorID string) (*AssignmentResult, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	booking, err := s.BookingRepo.GetByID(ctx, session.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.RequesterID != actorID {
		return nil, NewForbidden("only the requester may accept an offer")
	}

	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.SessionID != session.ID {
		return nil, NewInvalidState("offer does not belong to this session")
	}

	switch session.Status {
	case models.SessionStatusOpen:
		// fall through to the storage-level arbitration
	case models.SessionStatusWon:
		return nil, NewSessionAlreadyWon("session already has a winning offer")
	default:
		return nil, NewInvalidState(fmt.Sprintf("session is %s, offers can no longer be accepted", session.Status))
	}
	if offer.Status != models.OfferStatusPending {
		return nil, NewInvalidState(fmt.Sprintf("offer is %s, only a pending offer can be accepted", offer.Status))
	}

	err = s.SessionRepo.CommitAcceptance(ctx, session.ID, offer.ID, offer.ProviderID, booking.ID, offer.Price)
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotOpen) {
			// Lost the race (or the expiry sweep got there first).
			current, gerr := s.SessionRepo.GetByID(ctx, session.ID)
			if gerr == nil && current.Status == models.SessionStatusWon {
				return nil, NewSessionAlreadyWon("another offer was accepted first")
			}
			return nil, NewInvalidState("session is no longer open")
		}
		if errors.Is(err, sessionRepo.ErrOfferNotPending) {
			return nil, NewInvalidState("offer is no longer pending")
		}
		return nil, err
	}

	result := &AssignmentResult{
		SessionID:          session.ID,
		BookingID:          booking.ID,
		OfferID:            offer.ID,
		AssignedProviderID: offer.ProviderID,
		FinalPrice:         offer.Price,
	}

	s.Feed.Publish(session.ID, FeedEvent{
		Type:      FeedOfferAccepted,
		SessionID: session.ID,
		OfferID:   offer.ID,
		Data:      map[string]string{"providerId": offer.ProviderID},
	})
	s.Feed.CloseSession(session.ID)

	s.notifyOutcome(models.OutcomeEvent{
		Type:      "offer_accepted",
		UserID:    offer.ProviderID,
		SessionID: session.ID,
		BookingID: booking.ID,
	})
	return result, nil
}

// RejectOffer dismisses a single pending offer without ending the auction.
func (s *DefaultAuctionService) RejectOffer(ctx context.Context, sessionID, offerID, actorID string) error {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	booking, err := s.BookingRepo.GetByID(ctx, session.BookingID)
	if err != nil {
		return err
	}
	if booking.RequesterID != actorID {
		return NewForbidden("only the requester may reject an offer")
	}

	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.SessionID != session.ID {
		return NewInvalidState("offer does not belong to this session")
	}

	ok, err := s.OfferRepo.Transition(ctx, offer.ID,
		[]string{models.OfferStatusPending}, models.OfferStatusRejected)
	if err != nil {
		return err
	}
	if !ok {
		return NewInvalidState(fmt.Sprintf("offer is %s, only a pending offer can be rejected", offer.Status))
	}

	s.Feed.Publish(session.ID, FeedEvent{Type: FeedOfferRejected, SessionID: session.ID, OfferID: offer.ID})
	return nil
}

// ListOffers returns the session's offers in arrival order.
func (s *DefaultAuctionService) ListOffers(ctx context.Context, sessionID string) ([]models.Offer, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.OfferRepo.ListBySession(ctx, sessionID)
}

func (s *DefaultAuctionService) getOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	offer, err := s.OfferRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, offerRepo.ErrOfferNotFound) {
			return nil, NewNotFound(fmt.Sprintf("offer %s not found", offerID))
		}
		return nil, err
	}
	return offer, nil
}

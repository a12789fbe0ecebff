package notification

import (
	"context"
	"fmt"
	"strings"

	"fleetbid/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// DefaultNotificationService sends pushes through FCM. Invitations go to a
// topic derived from the vehicle-class filter, so the gateway needs no access
// to provider profiles; outcome events go to per-user topics.
type DefaultNotificationService struct {
	Client *messaging.Client
	Logger *zap.Logger
}

func NewDefaultNotificationService(client *messaging.Client, logger *zap.Logger) (*DefaultNotificationService, error) {
	if client == nil {
		return nil, fmt.Errorf("notification service initialization error: messaging client is nil")
	}
	return &DefaultNotificationService{Client: client, Logger: logger}, nil
}

// inviteTopic maps a vehicle class to the FCM topic eligible providers
// subscribe to. FCM topic names only allow [a-zA-Z0-9-_.~%].
func inviteTopic(vehicleClass string) string {
	class := strings.ToLower(strings.TrimSpace(vehicleClass))
	if class == "" {
		class = "any"
	}
	return "dispatch." + strings.ReplaceAll(class, " ", "-")
}

// NotifyAuctionOpened fans an invitation out to the provider pool matching
// the session's vehicle-class filter.
func (s *DefaultNotificationService) NotifyAuctionOpened(ctx context.Context, invite models.AuctionInvite) error {
	msg := &messaging.Message{
		Topic: inviteTopic(invite.VehicleClass),
		Notification: &messaging.Notification{
			Title: "New dispatch request",
			Body:  fmt.Sprintf("Proposed price %s %.2f", invite.Currency, invite.ProposedPrice),
		},
		Data: map[string]string{
			"sessionId":     invite.SessionID,
			"bookingId":     invite.BookingID,
			"proposedPrice": fmt.Sprintf("%.2f", invite.ProposedPrice),
			"currency":      invite.Currency,
			"closesAt":      invite.ClosesAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	}

	response, err := s.Client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("NotifyAuctionOpened: failed to send FCM message: %w", err)
	}

	s.Logger.Debug("auction invite fanned out",
		zap.String("sessionId", invite.SessionID),
		zap.String("response", response))
	return nil
}

// NotifyOutcome sends a single-party outcome event to the user's own topic.
func (s *DefaultNotificationService) NotifyOutcome(ctx context.Context, event models.OutcomeEvent) error {
	data := map[string]string{"type": event.Type}
	if event.SessionID != "" {
		data["sessionId"] = event.SessionID
	}
	if event.BookingID != "" {
		data["bookingId"] = event.BookingID
	}
	for k, v := range event.Data {
		data[k] = v
	}

	msg := &messaging.Message{
		Topic: "user." + event.UserID,
		Data:  data,
	}

	if _, err := s.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("NotifyOutcome: failed to send FCM message: %w", err)
	}
	return nil
}

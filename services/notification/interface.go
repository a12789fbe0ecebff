package notification

import (
	"context"

	"fleetbid/models"
)

// NotificationService is the fan-out gateway for auction invitations and
// outcome events. All sends are best-effort from the core's perspective: a
// failed fan-out never rolls back the state transition that triggered it.
type NotificationService interface {
	NotifyAuctionOpened(ctx context.Context, invite models.AuctionInvite) error
	NotifyOutcome(ctx context.Context, event models.OutcomeEvent) error
}

package auction

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fleetbid/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAuction struct {
	svc      *DefaultAuctionService
	bookings *fakeBookingRepo
	sessions *fakeSessionRepo
	offers   *fakeOfferRepo
	balance  *fakeBalance
	notifier *fakeNotifier
}

func newTestAuction() *testAuction {
	bookings := newFakeBookingRepo()
	offers := newFakeOfferRepo()
	sessions := newFakeSessionRepo(offers, bookings)
	balance := &fakeBalance{available: 500}
	notifier := &fakeNotifier{}

	svc := &DefaultAuctionService{
		SessionRepo:   sessions,
		OfferRepo:     offers,
		BookingRepo:   bookings,
		Balance:       balance,
		Notifier:      notifier,
		Feed:          NewBroker(),
		Logger:        zap.NewNop(),
		DefaultWindow: time.Minute,
	}
	return &testAuction{svc: svc, bookings: bookings, sessions: sessions, offers: offers, balance: balance, notifier: notifier}
}

func (ta *testAuction) seedBooking(t *testing.T) *models.BookingRequest {
	t.Helper()
	booking := &models.BookingRequest{
		RequesterID:    "req-1",
		OriginRef:      "loc-a",
		DestinationRef: "loc-b",
		EstimatedPrice: 100,
		Currency:       "USD",
		VehicleClass:   "van",
		Status:         models.BookingStatusCreated,
	}
	require.NoError(t, ta.bookings.Create(context.Background(), booking))
	return booking
}

func TestOpenSession_OpensWindowAndMarksBookingSearching(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	session, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120})
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusOpen, session.Status)
	assert.Equal(t, 120.0, session.ProposedPrice)
	assert.Equal(t, 60, session.WindowSeconds)
	assert.Equal(t, session.OpenedAt.Add(time.Minute), session.ClosesAt)

	updated, err := ta.bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusSearching, updated.Status)

	// Invitation fan-out is fire-and-forget.
	assert.Eventually(t, func() bool { return ta.notifier.inviteCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestOpenSession_HonorsCustomWindow(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)

	session, err := ta.svc.OpenSession(context.Background(), OpenSessionInput{
		BookingID: booking.ID, ProposedPrice: 120, WindowSeconds: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, session.WindowSeconds)
}

func TestOpenSession_InsufficientFunds(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ta.balance.available = 50

	_, err := ta.svc.OpenSession(context.Background(), OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120})
	require.Error(t, err)
	assert.Equal(t, CodeInsufficientFunds, ErrCode(err))
}

func TestOpenSession_RejectsSecondOpenSession(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	_, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120})
	require.NoError(t, err)

	_, err = ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 130})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrCode(err))
}

func TestOpenSession_UnknownBooking(t *testing.T) {
	ta := newTestAuction()

	_, err := ta.svc.OpenSession(context.Background(), OpenSessionInput{BookingID: "missing", ProposedPrice: 120})
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, ErrCode(err))
}

func TestOpenSession_RejectsAssignedBooking(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	_, err := ta.bookings.Transition(context.Background(), booking.ID,
		[]string{models.BookingStatusCreated}, models.BookingStatusAssigned)
	require.NoError(t, err)

	_, err = ta.svc.OpenSession(context.Background(), OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrCode(err))
}

func TestRaisePrice_SupersedesOpenSessionAndRejectsPending(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	session, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120})
	require.NoError(t, err)

	offer, err := ta.svc.SubmitOffer(ctx, SubmitOfferInput{SessionID: session.ID, ProviderID: "prov-1", Price: 120})
	require.NoError(t, err)

	events, cancel := ta.svc.Feed.Subscribe(session.ID)
	defer cancel()

	next, err := ta.svc.RaisePrice(ctx, session.ID, 150)
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, next.ID)
	assert.Equal(t, 150.0, next.ProposedPrice)
	assert.Equal(t, models.SessionStatusOpen, next.Status)

	old, err := ta.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusSuperseded, old.Status)

	rejected, err := ta.offers.GetByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, rejected.Status)

	event := <-events
	assert.Equal(t, FeedSessionSuperseded, event.Type)
	assert.Equal(t, next.ID, event.Data["nextSessionId"])
}

func TestRaisePrice_RequiresHigherPrice(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	session, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120})
	require.NoError(t, err)

	_, err = ta.svc.RaisePrice(ctx, session.ID, 120)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrCode(err))
}

func TestRaisePrice_AfterExpiryOpensFreshSession(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	session, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120, WindowSeconds: 1})
	require.NoError(t, err)

	n, err := ta.svc.ExpireDue(ctx, session.ClosesAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A raise on the expired session is a fresh session, not an error.
	next, err := ta.svc.RaisePrice(ctx, session.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusOpen, next.Status)

	old, err := ta.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusExpired, old.Status)
}

func TestRaisePrice_StaleExpiredSessionCannotForkSecondSession(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	first, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120, WindowSeconds: 1})
	require.NoError(t, err)

	n, err := ta.svc.ExpireDue(ctx, first.ClosesAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	second, err := ta.svc.RaisePrice(ctx, first.ID, 150)
	require.NoError(t, err)

	// Raising the stale expired session again while its successor is open
	// must not fork a second concurrent session.
	_, err = ta.svc.RaisePrice(ctx, first.ID, 160)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrCode(err))

	open, err := ta.sessions.FindOpenByBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, second.ID, open.ID)
}

func TestRaisePrice_RejectsAssignedBooking(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	session, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120, WindowSeconds: 1})
	require.NoError(t, err)

	offer, err := ta.svc.SubmitOffer(ctx, SubmitOfferInput{SessionID: session.ID, ProviderID: "prov-1", Price: 120})
	require.NoError(t, err)
	_, err = ta.svc.AcceptOffer(ctx, session.ID, offer.ID, "req-1")
	require.NoError(t, err)

	// The booking is assigned; the won session must not be reopened at a
	// higher price through the raise path.
	_, err = ta.svc.RaisePrice(ctx, session.ID, 150)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrCode(err))
}

func TestOpenSession_ConcurrentOpensAdmitExactlyOne(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	const racers = 8
	var wg sync.WaitGroup
	var opened int64
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(price float64) {
			defer wg.Done()
			if _, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: price}); err == nil {
				atomic.AddInt64(&opened, 1)
			} else {
				assert.Equal(t, CodeInvalidState, ErrCode(err))
			}
		}(120 + float64(i))
	}
	wg.Wait()

	assert.Equal(t, int64(1), opened)
}

func TestCancelSession_RequesterOnly(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	session, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120})
	require.NoError(t, err)

	err = ta.svc.CancelSession(ctx, session.ID, "someone-else")
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, ErrCode(err))

	require.NoError(t, ta.svc.CancelSession(ctx, session.ID, "req-1"))

	cancelled, err := ta.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, cancelled.Status)

	updated, err := ta.bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCreated, updated.Status)

	// Cancelling twice is a state violation, not a crash.
	err = ta.svc.CancelSession(ctx, session.ID, "req-1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrCode(err))
}

func TestExpireDue_IsIdempotent(t *testing.T) {
	ta := newTestAuction()
	booking := ta.seedBooking(t)
	ctx := context.Background()

	session, err := ta.svc.OpenSession(ctx, OpenSessionInput{BookingID: booking.ID, ProposedPrice: 120, WindowSeconds: 1})
	require.NoError(t, err)

	deadline := session.ClosesAt.Add(time.Second)
	n, err := ta.svc.ExpireDue(ctx, deadline)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A repeated sweep finds nothing left to expire.
	n, err = ta.svc.ExpireDue(ctx, deadline)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Eventually(t, func() bool {
		ta.notifier.mu.Lock()
		defer ta.notifier.mu.Unlock()
		count := 0
		for _, e := range ta.notifier.outcomes {
			if e.Type == "session_expired" {
				count++
			}
		}
		return count == 1
	}, time.Second, 10*time.Millisecond)
}

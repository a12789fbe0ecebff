package auction

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingRepo "fleetbid/database/repository/booking"
	offerRepo "fleetbid/database/repository/offer"
	sessionRepo "fleetbid/database/repository/session"
	"fleetbid/models"

	"github.com/google/uuid"
)

// The fakes below mirror the Mongo repositories' guard semantics under a
// mutex, so the single-winner race can be exercised for real in tests.

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.BookingRequest
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.BookingRequest)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *models.BookingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) Transition(ctx context.Context, id string, from []string, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if b.Status == s {
			b.Status = to
			b.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.AuctionSession
	offers   *fakeOfferRepo
	bookings *fakeBookingRepo
}

func newFakeSessionRepo(offers *fakeOfferRepo, bookings *fakeBookingRepo) *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]*models.AuctionSession),
		offers:   offers,
		bookings: bookings,
	}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.AuctionSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Mirror the partial unique open-session index.
	if session.Status == models.SessionStatusOpen {
		for _, s := range f.sessions {
			if s.BookingID == session.BookingID && s.Status == models.SessionStatusOpen {
				return sessionRepo.ErrOpenSessionExists
			}
		}
	}
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.AuctionSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, sessionRepo.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) FindOpenByBooking(ctx context.Context, bookingID string) (*models.AuctionSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.BookingID == bookingID && s.Status == models.SessionStatusOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) Transition(ctx context.Context, id string, from []string, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return false, nil
	}
	for _, st := range from {
		if s.Status == st {
			s.Status = to
			s.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionRepo) ExpireDue(ctx context.Context, now time.Time) ([]models.AuctionSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired []models.AuctionSession
	for _, s := range f.sessions {
		if s.Status == models.SessionStatusOpen && !now.Before(s.ClosesAt) {
			s.Status = models.SessionStatusExpired
			s.UpdatedAt = now
			expired = append(expired, *s)
		}
	}
	return expired, nil
}

func (f *fakeSessionRepo) CommitAcceptance(ctx context.Context, sessionID, offerID, providerID, bookingID string, finalPrice float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[sessionID]
	if !ok || s.Status != models.SessionStatusOpen {
		return sessionRepo.ErrSessionNotOpen
	}

	f.offers.mu.Lock()
	defer f.offers.mu.Unlock()
	winner, ok := f.offers.offers[offerID]
	if !ok || winner.Status != models.OfferStatusPending {
		return sessionRepo.ErrOfferNotPending
	}

	s.Status = models.SessionStatusWon
	s.WinningOfferID = offerID
	s.UpdatedAt = time.Now()
	winner.Status = models.OfferStatusAccepted

	for _, o := range f.offers.offers {
		if o.SessionID == sessionID && o.Status == models.OfferStatusPending {
			o.Status = models.OfferStatusRejected
		}
	}

	f.bookings.mu.Lock()
	defer f.bookings.mu.Unlock()
	if b, ok := f.bookings.bookings[bookingID]; ok {
		b.Status = models.BookingStatusAssigned
		b.AssignedProviderID = providerID
		b.FinalPrice = finalPrice
	}
	return nil
}

func (f *fakeSessionRepo) EnsureIndexes() error { return nil }

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*models.Offer
	seq    int
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[string]*models.Offer)}
}

func (f *fakeOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.offers {
		if o.SessionID == offer.SessionID && o.ProviderID == offer.ProviderID && o.Status == models.OfferStatusPending {
			return offerRepo.ErrDuplicatePending
		}
	}
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if offer.Status == "" {
		offer.Status = models.OfferStatusPending
	}
	f.seq++
	offer.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Microsecond)
	offer.UpdatedAt = offer.CreatedAt
	cp := *offer
	f.offers[offer.ID] = &cp
	return nil
}

func (f *fakeOfferRepo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return nil, offerRepo.ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Offer
	for _, o := range f.offers {
		if o.SessionID == sessionID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOfferRepo) Transition(ctx context.Context, id string, from []string, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if o.Status == s {
			o.Status = to
			o.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOfferRepo) RejectPendingBySession(ctx context.Context, sessionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, o := range f.offers {
		if o.SessionID == sessionID && o.Status == models.OfferStatusPending {
			o.Status = models.OfferStatusRejected
			n++
		}
	}
	return n, nil
}

func (f *fakeOfferRepo) EnsureIndexes() error { return nil }

type fakeBalance struct {
	available float64
}

func (f *fakeBalance) Available(ctx context.Context, userID, currency string) (float64, error) {
	return f.available, nil
}

// fakeNotifier records deliveries so tests can assert on fan-out without a
// real FCM client.
type fakeNotifier struct {
	mu       sync.Mutex
	invites  []models.AuctionInvite
	outcomes []models.OutcomeEvent
}

func (f *fakeNotifier) NotifyAuctionOpened(ctx context.Context, invite models.AuctionInvite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites = append(f.invites, invite)
	return nil
}

func (f *fakeNotifier) NotifyOutcome(ctx context.Context, event models.OutcomeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, event)
	return nil
}

func (f *fakeNotifier) inviteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invites)
}

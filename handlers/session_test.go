package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetbid/models"
	"fleetbid/services/auction"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuctionService is a mock implementation of auction.AuctionService.
type MockAuctionService struct {
	mock.Mock
}

func (m *MockAuctionService) OpenSession(ctx context.Context, input auction.OpenSessionInput) (*models.AuctionSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuctionSession), args.Error(1)
}

func (m *MockAuctionService) RaisePrice(ctx context.Context, sessionID string, newPrice float64) (*models.AuctionSession, error) {
	args := m.Called(ctx, sessionID, newPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuctionSession), args.Error(1)
}

func (m *MockAuctionService) CancelSession(ctx context.Context, sessionID, actorID string) error {
	args := m.Called(ctx, sessionID, actorID)
	return args.Error(0)
}

func (m *MockAuctionService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockAuctionService) GetSession(ctx context.Context, sessionID string) (*models.AuctionSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuctionSession), args.Error(1)
}

func (m *MockAuctionService) SubmitOffer(ctx context.Context, input auction.SubmitOfferInput) (*models.Offer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *MockAuctionService) AcceptOffer(ctx context.Context, sessionID, offerID, actorID string) (*auction.AssignmentResult, error) {
	args := m.Called(ctx, sessionID, offerID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.AssignmentResult), args.Error(1)
}

func (m *MockAuctionService) RejectOffer(ctx context.Context, sessionID, offerID, actorID string) error {
	args := m.Called(ctx, sessionID, offerID, actorID)
	return args.Error(0)
}

func (m *MockAuctionService) ListOffers(ctx context.Context, sessionID string) ([]models.Offer, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]models.Offer), args.Error(1)
}

func testRouter(mockSvc *MockAuctionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessionHandler := NewSessionHandler(mockSvc, nil)
	offerHandler := NewOfferHandler(mockSvc, sessionHandler)

	r := gin.New()
	r.POST("/api/sessions", sessionHandler.OpenSession)
	r.GET("/api/sessions/:id", sessionHandler.GetSession)
	r.POST("/api/sessions/:id/offers", offerHandler.SubmitOffer)
	r.POST("/api/sessions/:id/offers/:offerId/accept", offerHandler.AcceptOffer)
	return r
}

func TestSessionHandler_OpenSession(t *testing.T) {
	mockSvc := &MockAuctionService{}
	r := testRouter(mockSvc)

	closesAt := time.Now().Add(5 * time.Minute).UTC()
	mockSvc.On("OpenSession", mock.Anything, auction.OpenSessionInput{
		BookingID: "b1", ProposedPrice: 120,
	}).Return(&models.AuctionSession{ID: "s1", ClosesAt: closesAt, Status: models.SessionStatusOpen}, nil)

	body, _ := json.Marshal(gin.H{"bookingId": "b1", "proposedPrice": 120})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp["sessionId"])

	mockSvc.AssertExpectations(t)
}

func TestSessionHandler_OpenSessionInsufficientFunds(t *testing.T) {
	mockSvc := &MockAuctionService{}
	r := testRouter(mockSvc)

	mockSvc.On("OpenSession", mock.Anything, mock.Anything).
		Return(nil, auction.NewInsufficientFunds("available 10.00 is below proposed price 120.00"))

	body, _ := json.Marshal(gin.H{"bookingId": "b1", "proposedPrice": 120})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestSessionHandler_OpenSessionRejectsBadBody(t *testing.T) {
	mockSvc := &MockAuctionService{}
	r := testRouter(mockSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions", bytes.NewReader([]byte(`{"bookingId":"b1"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "OpenSession")
}

func TestSessionHandler_GetSessionNotFound(t *testing.T) {
	mockSvc := &MockAuctionService{}
	r := testRouter(mockSvc)

	mockSvc.On("GetSession", mock.Anything, "missing").
		Return(nil, auction.NewNotFound("session missing not found"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sessions/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOfferHandler_AcceptRaceLoserGetsConflict(t *testing.T) {
	mockSvc := &MockAuctionService{}
	r := testRouter(mockSvc)

	mockSvc.On("AcceptOffer", mock.Anything, "s1", "o2", "").
		Return(nil, auction.NewSessionAlreadyWon("another offer was accepted first"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions/s1/offers/o2/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOfferHandler_SubmitOffer(t *testing.T) {
	mockSvc := &MockAuctionService{}
	r := testRouter(mockSvc)

	mockSvc.On("SubmitOffer", mock.Anything, mock.MatchedBy(func(in auction.SubmitOfferInput) bool {
		return in.SessionID == "s1" && in.ProviderID == "prov-1" && in.Price == 130
	})).Return(&models.Offer{ID: "o1", Status: models.OfferStatusPending}, nil)

	body, _ := json.Marshal(gin.H{"providerId": "prov-1", "offeredPrice": 130})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions/s1/offers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "o1", resp["offerId"])
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fleetbid/models"
	"fleetbid/services/auction"
	"fleetbid/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionHandler exposes the auction session lifecycle over HTTP.
type SessionHandler struct {
	Service auction.AuctionService
	Cache   *redis.Client
}

func NewSessionHandler(svc auction.AuctionService, cache *redis.Client) *SessionHandler {
	return &SessionHandler{Service: svc, Cache: cache}
}

// sessionSnapshot is the cached read-path view: the session plus its offers.
type sessionSnapshot struct {
	Session *models.AuctionSession `json:"session"`
	Offers  []models.Offer         `json:"offers"`
}

// OpenSession starts a new auction for a booking.
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var input struct {
		BookingID     string  `json:"bookingId" binding:"required"`
		ProposedPrice float64 `json:"proposedPrice" binding:"required"`
		WindowSeconds int     `json:"windowSeconds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Service.OpenSession(c.Request.Context(), auction.OpenSessionInput{
		BookingID:     input.BookingID,
		ProposedPrice: input.ProposedPrice,
		WindowSeconds: input.WindowSeconds,
	})
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": session.ID,
		"closesAt":  session.ClosesAt,
	})
}

// RaisePrice supersedes the session with a fresh one at a higher price.
func (h *SessionHandler) RaisePrice(c *gin.Context) {
	sessionID := c.Param("id")
	var input struct {
		NewPrice float64 `json:"newPrice" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Service.RaisePrice(c.Request.Context(), sessionID, input.NewPrice)
	if err != nil {
		respondAuctionError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), sessionID)

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": session.ID,
		"closesAt":  session.ClosesAt,
	})
}

// CancelSession withdraws an open session; only the requester may do this.
func (h *SessionHandler) CancelSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.Service.CancelSession(c.Request.Context(), sessionID, actorID(c)); err != nil {
		respondAuctionError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), sessionID)

	c.JSON(http.StatusOK, gin.H{"status": models.SessionStatusCancelled})
}

// GetSession returns the session with its offers, served from the Redis
// snapshot cache when fresh.
func (h *SessionHandler) GetSession(c *gin.Context) {
	logger := getLogger(c)
	sessionID := c.Param("id")
	ctx := c.Request.Context()
	cacheKey := utils.SessionCachePrefix + sessionID

	if h.Cache != nil {
		if data, err := h.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var snap sessionSnapshot
			if err := json.Unmarshal([]byte(data), &snap); err == nil {
				c.JSON(http.StatusOK, snap)
				return
			}
		}
	}

	session, err := h.Service.GetSession(ctx, sessionID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}
	offers, err := h.Service.ListOffers(ctx, sessionID)
	if err != nil {
		respondAuctionError(c, err)
		return
	}

	snap := sessionSnapshot{Session: session, Offers: offers}
	if h.Cache != nil {
		if data, err := json.Marshal(snap); err == nil {
			if err := h.Cache.Set(ctx, cacheKey, data, utils.SessionCacheTTL).Err(); err != nil {
				logger.Warn("Failed to cache session snapshot", zap.String("sessionId", sessionID), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, snap)
}

// invalidate drops the cached snapshot after any transition so reads never
// serve a stale status past the next poll.
func (h *SessionHandler) invalidate(ctx context.Context, sessionID string) {
	if h.Cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	h.Cache.Del(cctx, utils.SessionCachePrefix+sessionID)
}

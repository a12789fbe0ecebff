package handlers

import (
	"net/http"

	"fleetbid/models"
	"fleetbid/services/auction"

	"github.com/gin-gonic/gin"
)

// OfferHandler exposes offer submission and the accept/reject decisions.
type OfferHandler struct {
	Service auction.AuctionService
	Session *SessionHandler
}

func NewOfferHandler(svc auction.AuctionService, sh *SessionHandler) *OfferHandler {
	return &OfferHandler{Service: svc, Session: sh}
}

// SubmitOffer records a provider's price for an open session.
func (h *OfferHandler) SubmitOffer(c *gin.Context) {
	sessionID := c.Param("id")
	var input struct {
		ProviderID   string  `json:"providerId"`
		OfferedPrice float64 `json:"offeredPrice" binding:"required"`
		Message      string  `json:"message"`
		Rating       float64 `json:"rating"`
		DistanceKM   float64 `json:"distanceKm"`
		VehicleClass string  `json:"vehicleClass"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	providerID := input.ProviderID
	if providerID == "" {
		providerID = actorID(c)
	}

	offer, err := h.Service.SubmitOffer(c.Request.Context(), auction.SubmitOfferInput{
		SessionID:  sessionID,
		ProviderID: providerID,
		Price:      input.OfferedPrice,
		Message:    input.Message,
		Provider: models.ProviderSnapshot{
			Rating:       input.Rating,
			DistanceKM:   input.DistanceKM,
			VehicleClass: input.VehicleClass,
		},
	})
	if err != nil {
		respondAuctionError(c, err)
		return
	}
	h.Session.invalidate(c.Request.Context(), sessionID)

	c.JSON(http.StatusCreated, gin.H{"offerId": offer.ID})
}

// AcceptOffer commits the assignment; losers of the race get a conflict.
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	sessionID := c.Param("id")
	offerID := c.Param("offerId")

	result, err := h.Service.AcceptOffer(c.Request.Context(), sessionID, offerID, actorID(c))
	if err != nil {
		respondAuctionError(c, err)
		return
	}
	h.Session.invalidate(c.Request.Context(), sessionID)

	c.JSON(http.StatusOK, result)
}

// RejectOffer declines one pending offer without closing the session.
func (h *OfferHandler) RejectOffer(c *gin.Context) {
	sessionID := c.Param("id")
	offerID := c.Param("offerId")

	if err := h.Service.RejectOffer(c.Request.Context(), sessionID, offerID, actorID(c)); err != nil {
		respondAuctionError(c, err)
		return
	}
	h.Session.invalidate(c.Request.Context(), sessionID)

	c.JSON(http.StatusOK, gin.H{"status": models.OfferStatusRejected})
}

// ListOffers returns the session's offers in arrival order.
func (h *OfferHandler) ListOffers(c *gin.Context) {
	offers, err := h.Service.ListOffers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAuctionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

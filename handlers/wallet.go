package handlers

import (
	"net/http"

	"fleetbid/services/wallet"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WalletHandler exposes the wallet read surface and Stripe top-ups.
type WalletHandler struct {
	Service wallet.WalletService
}

func NewWalletHandler(svc wallet.WalletService) *WalletHandler {
	return &WalletHandler{Service: svc}
}

// GetBalance returns the wallet for a user in the given currency.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := c.Param("userId")
	currency := c.DefaultQuery("currency", "USD")

	balance, err := h.Service.GetBalance(c.Request.Context(), userID, currency)
	if err != nil {
		getLogger(c).Error("Failed to load wallet", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}
	c.JSON(http.StatusOK, balance)
}

// CreateTopUpIntent creates a Stripe PaymentIntent for funding the caller's wallet.
func (h *WalletHandler) CreateTopUpIntent(c *gin.Context) {
	var input struct {
		Amount   float64 `json:"amount" binding:"required"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	intent, err := h.Service.CreateTopUpIntent(c.Request.Context(), actorID(c), input.Currency, input.Amount)
	if err != nil {
		getLogger(c).Error("Failed to create top-up intent", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create top-up intent"})
		return
	}
	c.JSON(http.StatusCreated, intent)
}

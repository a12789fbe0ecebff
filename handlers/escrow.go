package handlers

import (
	"context"
	"net/http"

	"fleetbid/services/escrow"

	"github.com/gin-gonic/gin"
)

// EscrowHandler exposes the settlement state machine.
type EscrowHandler struct {
	Service escrow.EscrowService
}

func NewEscrowHandler(svc escrow.EscrowService) *EscrowHandler {
	return &EscrowHandler{Service: svc}
}

// CreateHold opens an escrow hold for a completed booking. Safe to retry:
// a duplicate returns the existing record.
func (h *EscrowHandler) CreateHold(c *gin.Context) {
	var input struct {
		BookingID string  `json:"bookingId" binding:"required"`
		BuyerID   string  `json:"buyerId" binding:"required"`
		SellerID  string  `json:"sellerId" binding:"required"`
		Amount    float64 `json:"amount" binding:"required"`
		FeeRate   float64 `json:"feeRate"`
		Currency  string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	tx, err := h.Service.CreateHold(c.Request.Context(), escrow.CreateHoldInput{
		BookingID: input.BookingID,
		BuyerID:   input.BuyerID,
		SellerID:  input.SellerID,
		Amount:    input.Amount,
		FeeRate:   input.FeeRate,
		Currency:  input.Currency,
	})
	if err != nil {
		respondEscrowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"escrowId": tx.ID, "status": tx.Status})
}

// Release pays the seller from held funds; omitting amount releases the rest.
func (h *EscrowHandler) Release(c *gin.Context) {
	h.settle(c, h.Service.Release)
}

// Refund returns held funds to the buyer; omitting amount refunds the rest.
func (h *EscrowHandler) Refund(c *gin.Context) {
	h.settle(c, h.Service.Refund)
}

func (h *EscrowHandler) settle(c *gin.Context, op func(ctx context.Context, escrowID, actor string, amount float64) (*escrow.SettlementResult, error)) {
	escrowID := c.Param("id")
	var input struct {
		Amount float64 `json:"amount"`
		Notes  string  `json:"notes"`
	}
	// Body is optional for full settlements.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
	}

	result, err := op(c.Request.Context(), escrowID, actorID(c), input.Amount)
	if err != nil {
		respondEscrowError(c, err)
		return
	}

	resp := gin.H{"status": result.Escrow.Status, "escrow": result.Escrow}
	if result.Wallet != nil {
		resp["balances"] = result.Wallet
	}
	c.JSON(http.StatusOK, resp)
}

// OpenDispute freezes a held escrow pending resolution.
func (h *EscrowHandler) OpenDispute(c *gin.Context) {
	escrowID := c.Param("id")
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	tx, err := h.Service.OpenDispute(c.Request.Context(), escrowID, actorID(c), input.Reason)
	if err != nil {
		respondEscrowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": tx.Status})
}

// ResolveDispute splits the remaining funds between seller and buyer.
func (h *EscrowHandler) ResolveDispute(c *gin.Context) {
	escrowID := c.Param("id")
	var input struct {
		SellerAmount float64 `json:"sellerAmount"`
		BuyerRefund  float64 `json:"buyerRefund"`
		Notes        string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	tx, err := h.Service.ResolveDispute(c.Request.Context(), escrowID, actorID(c), escrow.Resolution{
		SellerAmount: input.SellerAmount,
		BuyerRefund:  input.BuyerRefund,
		Notes:        input.Notes,
	})
	if err != nil {
		respondEscrowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": tx.Status})
}

// GetTransaction returns one escrow record for audit.
func (h *EscrowHandler) GetTransaction(c *gin.Context) {
	tx, err := h.Service.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEscrowError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

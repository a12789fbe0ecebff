package handlers

import (
	"net/http"

	"fleetbid/services/auction"
	"fleetbid/services/escrow"

	"github.com/gin-gonic/gin"
)

// respondAuctionError maps auction error codes onto HTTP statuses. Races on
// acceptance surface as 409 so clients can tell them apart from bad input.
func respondAuctionError(c *gin.Context, err error) {
	switch auction.ErrCode(err) {
	case auction.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case auction.CodeForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case auction.CodeInsufficientFunds:
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case auction.CodeSessionAlreadyWon, auction.CodeInvalidState:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondEscrowError(c *gin.Context, err error) {
	switch escrow.ErrCode(err) {
	case escrow.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case escrow.CodeInsufficientFunds:
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case escrow.CodeTerminalState, escrow.CodeInvalidState:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

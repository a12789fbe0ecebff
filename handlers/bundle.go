package handlers

import (
	"net/http"

	"fleetbid/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints.
	CreateBooking gin.HandlerFunc
	GetBooking    gin.HandlerFunc
	JobCompleted  gin.HandlerFunc

	// Auction session endpoints.
	OpenSession   gin.HandlerFunc
	RaisePrice    gin.HandlerFunc
	CancelSession gin.HandlerFunc
	GetSession    gin.HandlerFunc

	// Offer endpoints.
	SubmitOffer gin.HandlerFunc
	AcceptOffer gin.HandlerFunc
	RejectOffer gin.HandlerFunc
	ListOffers  gin.HandlerFunc

	// Escrow endpoints.
	CreateHold     gin.HandlerFunc
	ReleaseEscrow  gin.HandlerFunc
	RefundEscrow   gin.HandlerFunc
	OpenDispute    gin.HandlerFunc
	ResolveDispute gin.HandlerFunc
	GetEscrow      gin.HandlerFunc

	// Wallet endpoints.
	GetWalletBalance  gin.HandlerFunc
	CreateTopUpIntent gin.HandlerFunc
}

// HealthHandler reports the latest stored dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": status})
}

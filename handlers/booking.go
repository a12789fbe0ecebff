package handlers

import (
	"errors"
	"net/http"
	"time"

	bookingRepo "fleetbid/database/repository/booking"
	"fleetbid/models"
	"fleetbid/services/tasks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingHandler covers the thin booking surface around the auction: creating
// the priced request a session auctions, reading it back, and the
// job-completion signal that opens the escrow hold.
type BookingHandler struct {
	Repo        bookingRepo.BookingRequestRepository
	AsynqClient *asynq.Client
}

func NewBookingHandler(repo bookingRepo.BookingRequestRepository, client *asynq.Client) *BookingHandler {
	return &BookingHandler{Repo: repo, AsynqClient: client}
}

// CreateBooking registers a priced booking request ready for auction.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input struct {
		OriginRef      string  `json:"originRef" binding:"required"`
		DestinationRef string  `json:"destinationRef" binding:"required"`
		EstimatedPrice float64 `json:"estimatedPrice" binding:"required"`
		Currency       string  `json:"currency"`
		VehicleClass   string  `json:"vehicleClass" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}
	now := time.Now().UTC()
	booking := &models.BookingRequest{
		ID:             uuid.New().String(),
		RequesterID:    actorID(c),
		OriginRef:      input.OriginRef,
		DestinationRef: input.DestinationRef,
		EstimatedPrice: input.EstimatedPrice,
		Currency:       currency,
		VehicleClass:   input.VehicleClass,
		Status:         models.BookingStatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.Repo.Create(c.Request.Context(), booking); err != nil {
		getLogger(c).Error("Failed to create booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GetBooking returns one booking request.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		getLogger(c).Error("Failed to load booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load booking"})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// JobCompleted is the signal from the execution/tracking side that the job
// finished. It enqueues the completion task; the worker opens the hold.
func (h *BookingHandler) JobCompleted(c *gin.Context) {
	bookingID := c.Param("id")

	task, err := tasks.NewJobCompletedTask(bookingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build completion task"})
		return
	}
	if _, err := h.AsynqClient.Enqueue(task); err != nil {
		getLogger(c).Error("Failed to enqueue completion task",
			zap.String("bookingId", bookingID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue completion task"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

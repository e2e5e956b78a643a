package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/middleware"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

// RestBookingHandler handles REST requests for the booking lifecycle.
type RestBookingHandler struct {
	bookingService services.IBookingService
}

// NewRestBookingHandler creates a new RestBookingHandler.
func NewRestBookingHandler(bookingService services.IBookingService) *RestBookingHandler {
	return &RestBookingHandler{bookingService: bookingService}
}

type checkoutRequest struct {
	Items []models.CartItem `json:"items" binding:"required"`
}

// Checkout handles POST /v1/checkout. Items settle independently; the
// response carries both the created bookings and the per-item failures, and
// the client clears only the items that succeeded from its cart.
func (h *RestBookingHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	renterID := c.GetString(middleware.ContextKeyUserID)
	result, err := h.bookingService.Checkout(c.Request.Context(), renterID, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if len(result.Bookings) == 0 {
		// Nothing succeeded; surface the failures without a created status
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// MyBookings handles GET /v1/my/booking.
func (h *RestBookingHandler) MyBookings(c *gin.Context) {
	renterID := c.GetString(middleware.ContextKeyUserID)
	bookings, err := h.bookingService.FindBookingsByRenter(c.Request.Context(), renterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// GetBookingByID handles GET /v1/my/booking/:id. A booking is only visible to
// its renter here; admins use the moderation endpoints.
func (h *RestBookingHandler) GetBookingByID(c *gin.Context) {
	booking, err := h.bookingService.FindBookingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if booking.RenterID != c.GetString(middleware.ContextKeyUserID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// OwnerBookings handles GET /v1/my/listing-booking: bookings made against
// the caller's listings, with the pending-settlement revenue total.
func (h *RestBookingHandler) OwnerBookings(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextKeyUserID)
	bookings, err := h.bookingService.FindBookingsByListingOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    bookings,
		"revenue": services.AggregateRevenue(bookings),
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/middleware"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/pricing"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

// RestListingHandler handles REST requests for listings.
type RestListingHandler struct {
	listingService services.IListingService
}

// NewRestListingHandler creates a new RestListingHandler.
func NewRestListingHandler(listingService services.IListingService) *RestListingHandler {
	return &RestListingHandler{listingService: listingService}
}

// Browse handles GET /v1/listing. Only published listings are visible here;
// pending inventory stays hidden until moderation approves it.
func (h *RestListingHandler) Browse(c *gin.Context) {
	listings, err := h.listingService.FindListingsByStatus(c.Request.Context(), models.ListingStatusActive)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if category := c.Query("category"); category != "" {
		filtered := make([]models.Listing, 0, len(listings))
		for _, l := range listings {
			if l.Category == category {
				filtered = append(filtered, l)
			}
		}
		listings = filtered
	}

	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// GetListingByID handles GET /v1/listing/:id.
func (h *RestListingHandler) GetListingByID(c *gin.Context) {
	listing, err := h.listingService.FindListingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// QuoteResponse is the priced preview of a prospective stay.
type QuoteResponse struct {
	ListingID string  `json:"listing_id"`
	Days      int     `json:"days"`
	Total     float64 `json:"total"`
	Deposit   float64 `json:"deposit"`
}

// Quote handles GET /v1/listing/:id/quote?start=...&end=... The price is
// computed from the listing's current rate; it is not reserved.
func (h *RestListingHandler) Quote(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be an RFC3339 timestamp"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be an RFC3339 timestamp"})
		return
	}

	listing, err := h.listingService.FindListingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	quote := pricing.ComputeStay(listing.DailyRate, start, end)
	c.JSON(http.StatusOK, QuoteResponse{
		ListingID: listing.ID,
		Days:      quote.Days,
		Total:     quote.Total,
		Deposit:   quote.Deposit,
	})
}

// CreateListing handles POST /v1/my/listing. New listings start in pending
// status and are invisible in browse until approved.
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	var draft services.ListingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ownerID := c.GetString(middleware.ContextKeyUserID)
	listing, err := h.listingService.CreateListing(c.Request.Context(), ownerID, draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// MyListings handles GET /v1/my/listing.
func (h *RestListingHandler) MyListings(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextKeyUserID)
	listings, err := h.listingService.FindListingsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// UpdateListing handles PATCH /v1/my/listing/:id.
func (h *RestListingHandler) UpdateListing(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	actingUserID := c.GetString(middleware.ContextKeyUserID)
	listing, err := h.listingService.UpdateListing(c.Request.Context(), c.Param("id"), actingUserID, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DeleteListing handles DELETE /v1/my/listing/:id.
func (h *RestListingHandler) DeleteListing(c *gin.Context) {
	actingUserID := c.GetString(middleware.ContextKeyUserID)
	if err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id"), actingUserID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

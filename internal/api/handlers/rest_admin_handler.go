package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/middleware"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/tasks"
)

// RestAdminHandler exposes the moderation engine over REST. Every route is
// behind AdminMiddleware; the services re-check the actor's stored role on
// top of the JWT claim.
type RestAdminHandler struct {
	cfg               *config.Config
	moderationService services.IModerationService
	listingService    services.IListingService
	bookingService    services.IBookingService
	userService       services.IUserService
	settingsService   services.ISettingsService
	taskClient        IAsynqClient // may be nil, disables notifications
}

// NewRestAdminHandler creates a new RestAdminHandler.
func NewRestAdminHandler(
	cfg *config.Config,
	moderationService services.IModerationService,
	listingService services.IListingService,
	bookingService services.IBookingService,
	userService services.IUserService,
	settingsService services.ISettingsService,
	taskClient IAsynqClient,
) *RestAdminHandler {
	return &RestAdminHandler{
		cfg:               cfg,
		moderationService: moderationService,
		listingService:    listingService,
		bookingService:    bookingService,
		userService:       userService,
		settingsService:   settingsService,
		taskClient:        taskClient,
	}
}

func (h *RestAdminHandler) actorID(c *gin.Context) string {
	return c.GetString(middleware.ContextKeyUserID)
}

// enqueueEmail is best-effort: the moderation decision already committed.
func (h *RestAdminHandler) enqueueEmail(c *gin.Context, payload tasks.EmailTaskPayload) {
	if h.taskClient == nil {
		return
	}
	task, err := tasks.NewEmailDeliveryTask(payload)
	if err != nil {
		log.Printf("Warning: failed to build %s email task for %s: %v", payload.TemplateID, payload.To, err)
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Printf("Warning: failed to enqueue %s email for %s: %v", payload.TemplateID, payload.To, err)
	}
}

func (h *RestAdminHandler) notifyBooking(c *gin.Context, booking *models.Booking, templateID string) {
	renter, err := h.userService.FindByID(c.Request.Context(), booking.RenterID)
	if err != nil {
		log.Printf("Warning: cannot notify renter %s of booking %s: %v", booking.RenterID, booking.ID, err)
		return
	}
	h.enqueueEmail(c, tasks.EmailTaskPayload{
		To:         renter.Email,
		TemplateID: templateID,
		Data: map[string]interface{}{
			"name":          renter.FullName,
			"listing_title": booking.ListingTitleSnapshot,
			"days":          booking.Days,
			"total_price":   booking.TotalPrice,
			"app_name":      h.cfg.AppName,
		},
	})
}

// PendingListings handles GET /v1/admin/listing/pending: the review queue.
func (h *RestAdminHandler) PendingListings(c *gin.Context) {
	listings, err := h.listingService.FindListingsByStatus(c.Request.Context(), models.ListingStatusPending)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// ApproveListing handles POST /v1/admin/listing/:id/approve.
func (h *RestAdminHandler) ApproveListing(c *gin.Context) {
	listingID := c.Param("id")
	listing, err := h.listingService.FindListingByID(c.Request.Context(), listingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.moderationService.ApproveListing(c.Request.Context(), listingID, h.actorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	if owner, err := h.userService.FindByID(c.Request.Context(), listing.OwnerID); err == nil {
		h.enqueueEmail(c, tasks.EmailTaskPayload{
			To:         owner.Email,
			TemplateID: "listing_published",
			Data: map[string]interface{}{
				"name":          owner.FullName,
				"listing_title": listing.Title,
				"app_name":      h.cfg.AppName,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": models.ListingStatusActive})
}

// RejectListing handles POST /v1/admin/listing/:id/reject. Rejection deletes
// the listing outright.
func (h *RestAdminHandler) RejectListing(c *gin.Context) {
	if err := h.moderationService.RejectListing(c.Request.Context(), c.Param("id"), h.actorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// BookingsByStatus handles GET /v1/admin/booking?status=pending.
func (h *RestAdminHandler) BookingsByStatus(c *gin.Context) {
	status := models.BookingStatus(c.DefaultQuery("status", string(models.BookingStatusPending)))
	bookings, err := h.bookingService.FindBookingsByStatus(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    bookings,
		"revenue": services.AggregateRevenue(bookings),
	})
}

// ApproveBooking handles POST /v1/admin/booking/:id/approve.
func (h *RestAdminHandler) ApproveBooking(c *gin.Context) {
	booking, err := h.moderationService.ApproveBooking(c.Request.Context(), c.Param("id"), h.actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifyBooking(c, booking, "booking_approved")
	c.JSON(http.StatusOK, booking)
}

// RejectBooking handles POST /v1/admin/booking/:id/reject.
func (h *RestAdminHandler) RejectBooking(c *gin.Context) {
	booking, err := h.moderationService.RejectBooking(c.Request.Context(), c.Param("id"), h.actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifyBooking(c, booking, "booking_rejected")
	c.JSON(http.StatusOK, booking)
}

// CompleteBooking handles POST /v1/admin/booking/:id/complete.
func (h *RestAdminHandler) CompleteBooking(c *gin.Context) {
	booking, err := h.moderationService.CompleteBooking(c.Request.Context(), c.Param("id"), h.actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifyBooking(c, booking, "booking_completed")
	c.JSON(http.StatusOK, booking)
}

// BlockUser handles POST /v1/admin/user/:id/block.
func (h *RestAdminHandler) BlockUser(c *gin.Context) {
	if err := h.moderationService.BlockUser(c.Request.Context(), c.Param("id"), h.actorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

// UnblockUser handles POST /v1/admin/user/:id/unblock.
func (h *RestAdminHandler) UnblockUser(c *gin.Context) {
	if err := h.moderationService.UnblockUser(c.Request.Context(), c.Param("id"), h.actorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": false})
}

// PromoteUser handles POST /v1/admin/user/:id/promote.
func (h *RestAdminHandler) PromoteUser(c *gin.Context) {
	if err := h.moderationService.PromoteUser(c.Request.Context(), c.Param("id"), h.actorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": models.RoleAdmin})
}

// DeleteReview handles DELETE /v1/admin/review/:id.
func (h *RestAdminHandler) DeleteReview(c *gin.Context) {
	if err := h.moderationService.DeleteReview(c.Request.Context(), c.Param("id"), h.actorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// RunOwnerFieldMigration handles POST /v1/admin/migration/owner-field. The
// job itself runs on the background worker; this only enqueues it.
func (h *RestAdminHandler) RunOwnerFieldMigration(c *gin.Context) {
	if h.taskClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue not available"})
		return
	}
	info, err := h.taskClient.EnqueueContext(c.Request.Context(), tasks.NewOwnerFieldMigrationTask())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID})
}

type setSettingRequest struct {
	Key   string      `json:"key" binding:"required"`
	Value interface{} `json:"value" binding:"required"`
}

// SetSetting handles PUT /v1/admin/settings.
func (h *RestAdminHandler) SetSetting(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.settingsService.Set(c.Request.Context(), req.Key, req.Value); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": req.Key, "value": req.Value})
}

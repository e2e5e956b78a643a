package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/middleware"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

// RestFavoriteHandler handles REST requests for saved listings.
type RestFavoriteHandler struct {
	favoriteService services.IFavoriteService
	listingService  services.IListingService
}

// NewRestFavoriteHandler creates a new RestFavoriteHandler.
func NewRestFavoriteHandler(favoriteService services.IFavoriteService, listingService services.IListingService) *RestFavoriteHandler {
	return &RestFavoriteHandler{
		favoriteService: favoriteService,
		listingService:  listingService,
	}
}

// Toggle handles POST /v1/my/favorite/:listing_id. The display snapshot is
// captured from the listing at toggle time; it does not follow later edits.
func (h *RestFavoriteHandler) Toggle(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	listingID := c.Param("listing_id")

	listing, err := h.listingService.FindListingByID(c.Request.Context(), listingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	snapshot := models.ListingSnapshot{
		Title:     listing.Title,
		Image:     listing.CanonicalImage(),
		DailyRate: listing.DailyRate,
		Category:  listing.Category,
	}
	outcome, err := h.favoriteService.Toggle(c.Request.Context(), userID, listingID, snapshot)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

// List handles GET /v1/my/favorite.
func (h *RestFavoriteHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	favorites, err := h.favoriteService.FindFavoritesByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": favorites})
}

// Check handles GET /v1/my/favorite/:listing_id.
func (h *RestFavoriteHandler) Check(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	saved, err := h.favoriteService.IsFavorite(c.Request.Context(), userID, c.Param("listing_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": saved})
}

package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/handlers"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

func TestRestFavoriteHandler_Toggle_CapturesSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockFavoriteSvc := new(MockFavoriteService)
	mockListingSvc := new(MockListingService)
	handler := handlers.NewRestFavoriteHandler(mockFavoriteSvc, mockListingSvc)

	r := gin.New()
	r.POST("/v1/my/favorite/:listing_id", withUser("user-1"), handler.Toggle)

	listing := &models.Listing{
		Base:      models.NewBase(),
		Title:     "Projector",
		Category:  "electronics",
		DailyRate: 15,
		Images:    []string{"/img/projector.jpg", "/img/projector-2.jpg"},
	}
	expectedSnapshot := models.ListingSnapshot{
		Title:     "Projector",
		Image:     "/img/projector.jpg",
		DailyRate: 15,
		Category:  "electronics",
	}
	mockListingSvc.On("FindListingByID", mock.Anything, listing.ID).Return(listing, nil)
	mockFavoriteSvc.On("Toggle", mock.Anything, "user-1", listing.ID, expectedSnapshot).
		Return(services.FavoriteAdded, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/my/favorite/"+listing.ID, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, services.FavoriteAdded, respBody["outcome"])
	mockFavoriteSvc.AssertExpectations(t)
	mockListingSvc.AssertExpectations(t)
}

func TestRestFavoriteHandler_Toggle_ListingGone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockFavoriteSvc := new(MockFavoriteService)
	mockListingSvc := new(MockListingService)
	handler := handlers.NewRestFavoriteHandler(mockFavoriteSvc, mockListingSvc)

	r := gin.New()
	r.POST("/v1/my/favorite/:listing_id", withUser("user-1"), handler.Toggle)

	mockListingSvc.On("FindListingByID", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("listing ghost: %w", services.ErrNotFound))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/my/favorite/ghost", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockFavoriteSvc.AssertNotCalled(t, "Toggle")
}

func TestRestFavoriteHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockFavoriteSvc := new(MockFavoriteService)
	handler := handlers.NewRestFavoriteHandler(mockFavoriteSvc, new(MockListingService))

	r := gin.New()
	r.GET("/v1/my/favorite/:listing_id", withUser("user-1"), handler.Check)

	mockFavoriteSvc.On("IsFavorite", mock.Anything, "user-1", "lst-1").Return(true, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/my/favorite/lst-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, true, respBody["favorite"])
	mockFavoriteSvc.AssertExpectations(t)
}

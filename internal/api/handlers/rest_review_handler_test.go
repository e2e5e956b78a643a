package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/handlers"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

func TestRestReviewHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockReviewSvc := new(MockReviewService)
	handler := handlers.NewRestReviewHandler(mockReviewSvc)

	r := gin.New()
	r.POST("/v1/listing/:id/review", withUser("user-1"), handler.Create)

	review := &models.Review{
		Base:      models.NewBase(),
		ListingID: "lst-1",
		UserID:    "user-1",
		Rating:    4,
		Comment:   "Worked as described",
	}
	mockReviewSvc.On("CreateReview", mock.Anything, "user-1", "lst-1", 4, "Worked as described").
		Return(review, nil)

	body := `{"rating":4,"comment":"Worked as described"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/listing/lst-1/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Review
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, 4, respBody.Rating)
	mockReviewSvc.AssertExpectations(t)
}

func TestRestReviewHandler_Create_BadRating(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockReviewSvc := new(MockReviewService)
	handler := handlers.NewRestReviewHandler(mockReviewSvc)

	r := gin.New()
	r.POST("/v1/listing/:id/review", withUser("user-1"), handler.Create)

	mockReviewSvc.On("CreateReview", mock.Anything, "user-1", "lst-1", 6, "").
		Return(nil, fmt.Errorf("rating must be between 1 and 5: %w", services.ErrValidation))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/listing/lst-1/review", strings.NewReader(`{"rating":6}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReviewSvc.AssertExpectations(t)
}

func TestRestReviewHandler_ListByListing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockReviewSvc := new(MockReviewService)
	handler := handlers.NewRestReviewHandler(mockReviewSvc)

	r := gin.New()
	r.GET("/v1/listing/:id/review", handler.ListByListing)

	reviews := []models.Review{
		{Base: models.NewBase(), ListingID: "lst-1", Rating: 5},
		{Base: models.NewBase(), ListingID: "lst-1", Rating: 3},
	}
	mockReviewSvc.On("FindReviewsByListing", mock.Anything, "lst-1").Return(reviews, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/listing/lst-1/review", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	data, ok := respBody["data"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, data, 2)
	mockReviewSvc.AssertExpectations(t)
}

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/handlers"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

func TestRestBookingHandler_Checkout_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockBookingSvc := new(MockBookingService)
	handler := handlers.NewRestBookingHandler(mockBookingSvc)

	r := gin.New()
	r.POST("/v1/checkout", withUser("renter-1"), handler.Checkout)

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	items := []models.CartItem{{ListingID: "lst-1", StartDate: start, EndDate: end}}
	result := &services.CheckoutResult{
		Bookings: []models.Booking{{
			Base:       models.NewBase(),
			ListingID:  "lst-1",
			RenterID:   "renter-1",
			Days:       2,
			TotalPrice: 50,
			Status:     models.BookingStatusApproved,
		}},
	}
	mockBookingSvc.On("Checkout", mock.Anything, "renter-1", items).Return(result, nil)

	body, _ := json.Marshal(map[string]interface{}{"items": items})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/checkout", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody services.CheckoutResult
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Len(t, respBody.Bookings, 1)
	assert.Empty(t, respBody.Failures)
	mockBookingSvc.AssertExpectations(t)
}

func TestRestBookingHandler_Checkout_EmptyCart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockBookingSvc := new(MockBookingService)
	handler := handlers.NewRestBookingHandler(mockBookingSvc)

	r := gin.New()
	r.POST("/v1/checkout", withUser("renter-1"), handler.Checkout)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/checkout", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockBookingSvc.AssertNotCalled(t, "Checkout")
}

func TestRestBookingHandler_Checkout_AllItemsFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockBookingSvc := new(MockBookingService)
	handler := handlers.NewRestBookingHandler(mockBookingSvc)

	r := gin.New()
	r.POST("/v1/checkout", withUser("renter-1"), handler.Checkout)

	result := &services.CheckoutResult{
		Failures: []services.CheckoutFailure{{ListingID: "ghost", Reason: "listing not found"}},
	}
	mockBookingSvc.On("Checkout", mock.Anything, "renter-1", mock.Anything).Return(result, nil)

	body := `{"items":[{"listing_id":"ghost","start_date":"2025-07-01T00:00:00Z","end_date":"2025-07-02T00:00:00Z"}]}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockBookingSvc.AssertExpectations(t)
}

func TestRestBookingHandler_GetBookingByID_OtherRenterHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockBookingSvc := new(MockBookingService)
	handler := handlers.NewRestBookingHandler(mockBookingSvc)

	r := gin.New()
	r.GET("/v1/my/booking/:id", withUser("renter-2"), handler.GetBookingByID)

	booking := &models.Booking{Base: models.NewBase(), RenterID: "renter-1"}
	mockBookingSvc.On("FindBookingByID", mock.Anything, booking.ID).Return(booking, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/my/booking/"+booking.ID, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockBookingSvc.AssertExpectations(t)
}

func TestRestBookingHandler_OwnerBookings_Revenue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockBookingSvc := new(MockBookingService)
	handler := handlers.NewRestBookingHandler(mockBookingSvc)

	r := gin.New()
	r.GET("/v1/my/listing-booking", withUser("owner-1"), handler.OwnerBookings)

	bookings := []models.Booking{
		{Base: models.NewBase(), Status: models.BookingStatusApproved, TotalPrice: 120},
		{Base: models.NewBase(), Status: models.BookingStatusApproved, TotalPrice: 30},
		{Base: models.NewBase(), Status: models.BookingStatusCompleted, TotalPrice: 999},
	}
	mockBookingSvc.On("FindBookingsByListingOwner", mock.Anything, "owner-1").Return(bookings, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/my/listing-booking", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	// Only approved bookings count toward pending settlement
	assert.Equal(t, 150.0, respBody["revenue"])
	mockBookingSvc.AssertExpectations(t)
}

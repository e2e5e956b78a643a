package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/handlers"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		JwtSecret: "test-secret",
		JwtTTL:    time.Hour,
		AppName:   "Test Rentals",
	}
}

func TestRestUserHandler_Register_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockUserSvc := new(MockUserService)
	mockAsynq := new(MockAsynqClient)
	handler := handlers.NewRestUserHandler(testConfig(), mockUserSvc, mockAsynq)

	r := gin.New()
	r.POST("/v1/user/register", handler.Register)

	user := &models.User{
		Base:     models.NewBase(),
		Email:    "ayse@example.com",
		FullName: "Ayşe Yılmaz",
		Role:     models.RoleMember,
	}
	mockUserSvc.On("Register", mock.Anything, "ayse@example.com", "Ayşe Yılmaz", "hunter22").Return(user, nil)
	mockAsynq.On("EnqueueContext", mock.Anything, mock.Anything).Return(&asynq.TaskInfo{ID: "task-1"}, nil)

	body := `{"email":"ayse@example.com","full_name":"Ayşe Yılmaz","password":"hunter22"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.NotEmpty(t, respBody["token"])
	assert.Equal(t, user.ID, respBody["user_id"])
	assert.Equal(t, false, respBody["is_admin"])
	mockUserSvc.AssertExpectations(t)
	mockAsynq.AssertExpectations(t)
}

func TestRestUserHandler_Register_DuplicateEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockUserSvc := new(MockUserService)
	handler := handlers.NewRestUserHandler(testConfig(), mockUserSvc, nil)

	r := gin.New()
	r.POST("/v1/user/register", handler.Register)

	mockUserSvc.On("Register", mock.Anything, "taken@example.com", "", "pw123456").
		Return(nil, fmt.Errorf("register: %w", services.ErrEmailExists))

	body := `{"email":"taken@example.com","password":"pw123456"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockUserSvc.AssertExpectations(t)
}

func TestRestUserHandler_Login_InvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockUserSvc := new(MockUserService)
	handler := handlers.NewRestUserHandler(testConfig(), mockUserSvc, nil)

	r := gin.New()
	r.POST("/v1/user/login", handler.Login)

	// Unknown account and wrong password must look identical to the caller
	mockUserSvc.On("Authenticate", mock.Anything, "ghost@example.com", "whatever").
		Return(nil, fmt.Errorf("no such account: %w", services.ErrNotFound))

	body := `{"email":"ghost@example.com","password":"whatever"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/user/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "Invalid credentials", respBody["error"])
	mockUserSvc.AssertExpectations(t)
}

func TestRestUserHandler_GetUserByID_PublicShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockUserSvc := new(MockUserService)
	handler := handlers.NewRestUserHandler(testConfig(), mockUserSvc, nil)

	r := gin.New()
	r.GET("/v1/user/:id", handler.GetUserByID)

	user := &models.User{
		Base:         models.NewBase(),
		Email:        "mehmet@example.com",
		FullName:     "Mehmet Demir",
		PasswordHash: "$2a$10$abcdefg",
		CreatedAt:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	mockUserSvc.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/user/"+user.ID, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "Mehmet Demir", respBody["name"])
	assert.Equal(t, "2024-03-15", respBody["date_joined"])
	// Email and password hash must not leak through the public profile
	assert.NotContains(t, w.Body.String(), "mehmet@example.com")
	assert.NotContains(t, w.Body.String(), "$2a$10$")
	mockUserSvc.AssertExpectations(t)
}

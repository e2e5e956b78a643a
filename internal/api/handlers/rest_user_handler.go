package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/middleware"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/auth"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/tasks"
)

// RestUserHandler handles REST requests for accounts and sessions.
type RestUserHandler struct {
	cfg         *config.Config
	userService services.IUserService
	taskClient  IAsynqClient // may be nil, disables welcome emails
}

// NewRestUserHandler creates a new RestUserHandler.
func NewRestUserHandler(cfg *config.Config, userService services.IUserService, taskClient IAsynqClient) *RestUserHandler {
	return &RestUserHandler{
		cfg:         cfg,
		userService: userService,
		taskClient:  taskClient,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

// Register handles POST /v1/user/register.
func (h *RestUserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.enqueueWelcomeEmail(c, user.Email, user.FullName)

	token, err := auth.GenerateJWT(user.ID, user.IsAdmin(), h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Token: token, UserID: user.ID, IsAdmin: user.IsAdmin()})
}

func (h *RestUserHandler) enqueueWelcomeEmail(c *gin.Context, to, name string) {
	if h.taskClient == nil {
		return
	}
	task, err := tasks.NewEmailDeliveryTask(tasks.EmailTaskPayload{
		To:         to,
		TemplateID: "welcome",
		Data:       map[string]interface{}{"name": name, "app_name": h.cfg.AppName},
	})
	if err != nil {
		log.Printf("Warning: failed to build welcome email task for %s: %v", to, err)
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		// Registration itself already succeeded
		log.Printf("Warning: failed to enqueue welcome email for %s: %v", to, err)
	}
}

// Login handles POST /v1/user/login.
func (h *RestUserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Do not reveal whether the account exists
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.IsAdmin(), h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: token, UserID: user.ID, IsAdmin: user.IsAdmin()})
}

// Me handles GET /v1/me.
func (h *RestUserHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PublicUser is the data exposed for another member's profile.
type PublicUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DateJoined string `json:"date_joined"`
}

// GetUserByID handles GET /v1/user/:id.
func (h *RestUserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PublicUser{
		ID:         user.ID,
		Name:       user.FullName,
		DateJoined: user.CreatedAt.Format("2006-01-02"),
	})
}

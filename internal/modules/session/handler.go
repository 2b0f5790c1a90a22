package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"factorydesk/internal/domain"
	"factorydesk/internal/middleware"
	"factorydesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	protected.POST("/auth/logout", h.Logout)
	protected.GET("/auth/session", h.CurrentSession)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid login request")
		return
	}

	var (
		user  *domain.User
		token string
		err   error
	)
	if req.Role == string(domain.RoleAdmin) {
		user, token, err = h.service.LoginAdmin()
	} else {
		if req.PersonnelID == "" {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "personnelId is required")
			return
		}
		user, token, err = h.service.LoginPersonnel(req.PersonnelID)
	}
	if err != nil {
		if errors.Is(err, ErrPersonnelNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Personnel not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to start session")
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{User: user, Token: token})
}

func (h *Handler) Logout(c *gin.Context) {
	user := middleware.SessionUser(c)
	if err := h.service.Logout(user); err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to end session")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) CurrentSession(c *gin.Context) {
	user, ok := h.service.Current()
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "No active session")
		return
	}
	response.Success(c, http.StatusOK, user)
}

package notification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"factorydesk/internal/middleware"
	"factorydesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/notifications")
	{
		g.GET("", h.GetNotifications)
		g.PATCH("/:id/read", h.MarkAsRead)
		g.DELETE("", h.ClearAll)
	}
}

func (h *Handler) GetNotifications(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	list, unread := h.service.ListVisible(user)
	response.Success(c, http.StatusOK, gin.H{
		"notifications": list,
		"unread_count":  unread,
	})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	if err := h.service.MarkRead(user, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark notification as read")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) ClearAll(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	if err := h.service.ClearAll(user); err != nil {
		response.Error(c, http.StatusInternalServerError, "CLEAR_FAILED", "Failed to clear notifications")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

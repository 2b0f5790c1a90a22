package trash

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
	g := protected.Group("/trash")
	{
		g.GET("/:kind", h.ListTrash)
		g.POST("/:kind/:id", h.MoveToTrash)
		g.POST("/:kind/:id/restore", h.RestoreItem)
		g.DELETE("/:kind/:id", h.PurgeItem)
	}
}

func (h *Handler) ListTrash(c *gin.Context) {
	entries, err := h.service.List(Kind(c.Param("kind")))
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown trash kind")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"entries":     entries,
		"retentionMs": h.service.Retention().Milliseconds(),
	})
}

func (h *Handler) MoveToTrash(c *gin.Context) {
	user := middleware.SessionUser(c)
	if err := h.service.Move(user, Kind(c.Param("kind")), c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to move item to trash")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"trashed": true})
}

func (h *Handler) RestoreItem(c *gin.Context) {
	user := middleware.SessionUser(c)
	if err := h.service.Restore(user, Kind(c.Param("kind")), c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to restore item")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"restored": true})
}

func (h *Handler) PurgeItem(c *gin.Context) {
	user := middleware.SessionUser(c)
	if err := h.service.Purge(user, Kind(c.Param("kind")), c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to delete item permanently")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"purged": true})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUnknownKind):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown trash kind")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Item not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	default:
		response.Error(c, http.StatusInternalServerError, "TRASH_FAILED", fallback)
	}
}

package backup

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
	g := protected.Group("/backup", middleware.AdminOnly())
	{
		g.GET("/export", h.ExportBackup)
		g.POST("/import", h.ImportBackup)
	}
}

func (h *Handler) ExportBackup(c *gin.Context) {
	a, err := h.service.Export()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export backup")
		return
	}
	response.Success(c, http.StatusOK, a)
}

func (h *Handler) ImportBackup(c *gin.Context) {
	user := middleware.SessionUser(c)

	var a Archive
	if err := c.ShouldBindJSON(&a); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid backup payload")
		return
	}

	if err := h.service.Import(user, &a); err != nil {
		if errors.Is(err, ErrInvalidBackup) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid backup payload")
			return
		}
		response.Error(c, http.StatusInternalServerError, "IMPORT_FAILED", "Failed to import backup")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"imported": true})
}

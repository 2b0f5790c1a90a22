package prefs

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
	g := protected.Group("/prefs")
	{
		g.GET("", h.GetPreferences)
		g.PUT("/language", h.SetLanguage)
		g.PUT("/app-url", h.SetAppURL)
		g.DELETE("/app-url", h.ClearAppURL)
	}
}

func (h *Handler) GetPreferences(c *gin.Context) {
	url, _ := h.service.AppURL()
	response.Success(c, http.StatusOK, gin.H{
		"language": h.service.Language(),
		"appUrl":   url,
	})
}

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (h *Handler) SetLanguage(c *gin.Context) {
	user := middleware.SessionUser(c)

	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Language is required")
		return
	}
	if err := h.service.SetLanguage(user, req.Language); err != nil {
		if errors.Is(err, ErrUnknownLanguage) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Language must be TH or EN")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to set language")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"language": req.Language})
}

type appURLRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *Handler) SetAppURL(c *gin.Context) {
	user := middleware.SessionUser(c)

	var req appURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A valid URL is required")
		return
	}
	if err := h.service.SetAppURL(user, req.URL); err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to set app URL")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"appUrl": req.URL})
}

func (h *Handler) ClearAppURL(c *gin.Context) {
	if err := h.service.ClearAppURL(); err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to clear app URL")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

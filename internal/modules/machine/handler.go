package machine

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"factorydesk/internal/domain"
	"factorydesk/internal/middleware"
	"factorydesk/internal/pkg/response"
	"factorydesk/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/machines")
	{
		g.GET("", h.ListMachines)
		g.GET("/:id", h.GetMachine)
		g.PUT("", h.SaveMachine)
		g.POST("/:id/duplicate", h.DuplicateMachine)
	}
}

func (h *Handler) ListMachines(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.List())
}

func (h *Handler) GetMachine(c *gin.Context) {
	m, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Machine not found")
		return
	}
	response.Success(c, http.StatusOK, m)
}

func (h *Handler) SaveMachine(c *gin.Context) {
	user := middleware.SessionUser(c)

	var m domain.Machine
	if err := c.ShouldBindJSON(&m); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid machine payload")
		return
	}
	if errs := validator.Validate(m); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid machine payload", errs)
		return
	}

	saved, err := h.service.Save(user, m)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can edit machines")
			return
		}
		response.Error(c, http.StatusInternalServerError, "SAVE_FAILED", "Failed to save machine")
		return
	}
	response.Success(c, http.StatusOK, saved)
}

func (h *Handler) DuplicateMachine(c *gin.Context) {
	user := middleware.SessionUser(c)

	copyMachine, err := h.service.Duplicate(user, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can duplicate machines")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Machine not found")
		default:
			response.Error(c, http.StatusInternalServerError, "DUPLICATE_FAILED", "Failed to duplicate machine")
		}
		return
	}
	response.Success(c, http.StatusCreated, copyMachine)
}

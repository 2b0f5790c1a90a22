package task

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
	g := protected.Group("/tasks")
	{
		g.GET("", h.ListTasks)
		g.POST("", h.CreateTask)
		g.PATCH("/:id", h.UpdateTask)
	}
}

func (h *Handler) ListTasks(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.List())
}

func (h *Handler) CreateTask(c *gin.Context) {
	user := middleware.SessionUser(c)

	var t domain.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid task payload")
		return
	}
	if errs := validator.Validate(t); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid task payload", errs)
		return
	}

	created, err := h.service.Create(user, t)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can create tasks")
		case errors.Is(err, ErrNoTarget):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Task needs an assignee or a target department")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create task")
		}
		return
	}
	response.Success(c, http.StatusCreated, created)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	user := middleware.SessionUser(c)

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid update payload")
		return
	}

	updated, err := h.service.Update(user, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Task not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update task")
		return
	}
	response.Success(c, http.StatusOK, updated)
}

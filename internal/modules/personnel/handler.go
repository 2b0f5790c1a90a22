package personnel

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
	// the login screen lists the roster before any session exists
	public.GET("/personnel", h.ListPersonnel)

	g := protected.Group("/personnel")
	{
		g.POST("", h.AddPersonnel)
		g.PUT("/:id", h.UpdatePersonnel)
	}
	d := protected.Group("/departments")
	{
		d.GET("", h.ListDepartments)
		d.POST("", h.AddDepartment)
		d.PUT("/:name", h.RenameDepartment)
		d.DELETE("/:name", h.DeleteDepartment)
	}
}

func (h *Handler) ListPersonnel(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.List())
}

func (h *Handler) AddPersonnel(c *gin.Context) {
	user := middleware.SessionUser(c)

	var p domain.Personnel
	if err := c.ShouldBindJSON(&p); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid personnel payload")
		return
	}

	created, err := h.service.Add(user, p)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can manage personnel")
		case errors.Is(err, ErrDuplicateID):
			response.Error(c, http.StatusConflict, "CONFLICT", "Personnel id already in use")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to add personnel")
		}
		return
	}
	response.Success(c, http.StatusCreated, created)
}

func (h *Handler) UpdatePersonnel(c *gin.Context) {
	user := middleware.SessionUser(c)

	var p domain.Personnel
	if err := c.ShouldBindJSON(&p); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid personnel payload")
		return
	}
	p.ID = c.Param("id")

	updated, err := h.service.Update(user, p)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can manage personnel")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Personnel not found")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update personnel")
		}
		return
	}
	response.Success(c, http.StatusOK, updated)
}

func (h *Handler) ListDepartments(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Departments())
}

type departmentRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) AddDepartment(c *gin.Context) {
	user := middleware.SessionUser(c)

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Department name is required")
		return
	}

	if err := h.service.AddDepartment(user, req.Name); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can manage departments")
		case errors.Is(err, ErrDepartmentExists):
			response.Error(c, http.StatusConflict, "CONFLICT", "Department already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to add department")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"name": req.Name})
}

func (h *Handler) RenameDepartment(c *gin.Context) {
	user := middleware.SessionUser(c)

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Department name is required")
		return
	}

	if err := h.service.RenameDepartment(user, c.Param("name"), req.Name); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can manage departments")
		case errors.Is(err, ErrNoDepartment):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Department not found")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to rename department")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"name": req.Name})
}

func (h *Handler) DeleteDepartment(c *gin.Context) {
	user := middleware.SessionUser(c)

	if err := h.service.DeleteDepartment(user, c.Param("name")); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the administrator can manage departments")
		case errors.Is(err, ErrNoDepartment):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Department not found")
		case errors.Is(err, ErrDepartmentInUse):
			response.Error(c, http.StatusConflict, "CONFLICT", "Department still has members")
		default:
			response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete department")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

package inspection

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

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/inspections")
	{
		g.GET("", h.ListRecords)
		g.GET("/:id", h.GetRecord)
		g.POST("", h.SubmitRecord)
	}
}

func (h *Handler) ListRecords(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.History(c.Query("machine_id")))
}

func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Inspection record not found")
		return
	}
	response.Success(c, http.StatusOK, rec)
}

func (h *Handler) SubmitRecord(c *gin.Context) {
	user := middleware.SessionUser(c)

	var rec domain.InspectionRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid inspection payload")
		return
	}

	saved, err := h.service.Submit(user, rec)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoMachine):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "กรุณาเลือกเครื่องจักร")
		case errors.Is(err, ErrChecklistIncomplete):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "กรุณากรอกผลการตรวจเช็คให้ครบทุกรายการ")
		case errors.Is(err, ErrMissingAbnormalNote):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "กรุณาระบุหมายเหตุสำหรับรายการที่ผิดปกติ")
		case errors.Is(err, ErrMissingOperatorSign):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "กรุณาลงลายมือชื่อผู้ตรวจเช็ค")
		case errors.Is(err, ErrEditForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only supervisors, engineers or the administrator can edit records")
		default:
			response.Error(c, http.StatusInternalServerError, "SAVE_FAILED", "Failed to save inspection record")
		}
		return
	}
	response.Success(c, http.StatusCreated, saved)
}

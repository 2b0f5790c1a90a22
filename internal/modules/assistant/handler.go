package assistant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"factorydesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/assistant")
	{
		g.POST("/analyze", h.AnalyzeIssue)
		g.POST("/report", h.EfficiencyReport)
	}
}

type analyzeRequest struct {
	Problem      string `json:"problem" binding:"required"`
	MachineModel string `json:"machineModel"`
}

func (h *Handler) AnalyzeIssue(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Problem description is required")
		return
	}
	text := h.service.AnalyzeIssue(c.Request.Context(), req.Problem, req.MachineModel)
	response.Success(c, http.StatusOK, gin.H{"analysis": text})
}

type reportRequest struct {
	Metrics string `json:"metrics" binding:"required"`
}

func (h *Handler) EfficiencyReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Metrics payload is required")
		return
	}
	text := h.service.GenerateEfficiencyReport(c.Request.Context(), req.Metrics)
	response.Success(c, http.StatusOK, gin.H{"report": text})
}

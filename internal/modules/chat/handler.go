package chat

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
	g := protected.Group("/chat")
	{
		g.GET("/unread", h.UnreadCounts)
		g.GET("/:userId", h.GetConversation)
		g.POST("/:userId", h.SendMessage)
		g.PATCH("/:userId/read", h.MarkConversationRead)
	}
}

type sendRequest struct {
	ReceiverName string                  `json:"receiverName"`
	Text         string                  `json:"text"`
	Attachments  []domain.TaskAttachment `json:"attachments"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	user := middleware.SessionUser(c)

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid message payload")
		return
	}

	msg, err := h.service.Send(user, c.Param("userId"), req.ReceiverName, req.Text, req.Attachments)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message needs text or an attachment")
			return
		}
		response.Error(c, http.StatusInternalServerError, "SEND_FAILED", "Failed to send message")
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

func (h *Handler) GetConversation(c *gin.Context) {
	user := middleware.SessionUser(c)
	response.Success(c, http.StatusOK, h.service.Conversation(user, c.Param("userId")))
}

func (h *Handler) MarkConversationRead(c *gin.Context) {
	user := middleware.SessionUser(c)
	if err := h.service.MarkRead(user, c.Param("userId")); err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark conversation as read")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) UnreadCounts(c *gin.Context) {
	user := middleware.SessionUser(c)
	response.Success(c, http.StatusOK, h.service.UnreadCounts(user))
}

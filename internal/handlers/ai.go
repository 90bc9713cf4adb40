package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/leadpilot/lead-management-api/internal/errors"
	"github.com/leadpilot/lead-management-api/internal/services"
)

// AIHandler exposes the dashboard assistant.
type AIHandler struct {
	aiService *services.AIService
}

// NewAIHandler creates a new AIHandler. aiService may be nil when no API key
// is configured; chat then answers 503.
func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// Chat runs a multi-turn assistant conversation.
func (h *AIHandler) Chat(c *gin.Context) {
	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI assistant is not configured")
		return
	}

	type ChatRequest struct {
		Messages []services.ChatMessage `json:"messages" binding:"required,min=1,dive"`
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	reply, err := h.aiService.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		apierrors.ServiceUnavailable(c, "AI assistant is temporarily unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": services.ChatMessage{Role: "assistant", Content: reply},
	})
}

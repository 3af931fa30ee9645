package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type startChatRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
}

// StartChat handles POST /api/chat/start
func (h *Handler) StartChat(c *gin.Context) {
	var req startChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, err)
		return
	}

	chatID, err := h.chatService.StartChat(c.Request.Context(), req.AssetID)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chatID})
}

type chatMessageRequest struct {
	ChatID  string `json:"chat_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ChatMessage handles POST /api/chat/message. The answer is streamed as
// server-sent events: zero or more "delta" events carrying text fragments,
// then exactly one terminal "done" or "error" event, so the consumer can
// tell a completed answer from a truncated one even though the HTTP status
// is committed once streaming begins. Failures before the first fragment
// are still reported as plain JSON errors.
func (h *Handler) ChatMessage(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, err)
		return
	}

	streaming := false
	startStream := func() {
		if streaming {
			return
		}
		streaming = true
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)
	}

	err := h.chatService.StreamMessage(c.Request.Context(), req.ChatID, req.Message, func(delta string) error {
		if err := c.Request.Context().Err(); err != nil {
			return fmt.Errorf("client disconnected: %w", err)
		}

		startStream()
		c.SSEvent("delta", delta)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		if !streaming {
			sendError(c, err)
			return
		}
		c.SSEvent("error", gin.H{"message": err.Error()})
		c.Writer.Flush()
		return
	}

	// An empty answer still terminates with a done event
	startStream()
	c.SSEvent("done", gin.H{"chat_id": req.ChatID})
	c.Writer.Flush()
}

// ChatHistory handles GET /api/chat/history
func (h *Handler) ChatHistory(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		sendBadRequest(c, fmt.Errorf("chat_id is required"))
		return
	}

	history, err := h.chatService.History(c.Request.Context(), chatID)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/src/core/chat"
	"docchat/src/core/document"
)

// DocumentService is the ingestion facility consumed by the handlers
type DocumentService interface {
	Process(ctx context.Context, filePath string) (string, error)
	ListDocuments(ctx context.Context) ([]string, error)
}

// ChatService is the conversation facility consumed by the handlers
type ChatService interface {
	StartChat(ctx context.Context, assetID string) (string, error)
	StreamMessage(ctx context.Context, chatID, message string, onDelta func(delta string) error) error
	History(ctx context.Context, chatID string) ([]string, error)
}

type Handler struct {
	docService  DocumentService
	chatService ChatService
}

func NewHandler(docService DocumentService, chatService ChatService) *Handler {
	return &Handler{
		docService:  docService,
		chatService: chatService,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Document routes
	api.POST("/documents/process", h.ProcessDocument)
	api.GET("/documents", h.ListDocuments)

	// Chat routes
	api.POST("/chat/start", h.StartChat)
	api.POST("/chat/message", h.ChatMessage)
	api.GET("/chat/history", h.ChatHistory)
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, err error) {
	var code string
	var status int

	switch {
	case errors.Is(err, document.ErrUnsupportedFileType):
		code = "UNSUPPORTED_FILE_TYPE"
		status = http.StatusBadRequest
	case errors.Is(err, document.ErrProcessingFailed):
		code = "PROCESSING_FAILED"
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrUnknownChat):
		code = "UNKNOWN_CHAT"
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrUnknownAsset):
		code = "UNKNOWN_ASSET"
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrTooManySessions):
		code = "TOO_MANY_SESSIONS"
		status = http.StatusTooManyRequests
	default:
		code = "INTERNAL_ERROR"
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
	})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type processDocumentRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// ProcessDocument handles POST /api/documents/process
func (h *Handler) ProcessDocument(c *gin.Context) {
	var req processDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, err)
		return
	}

	assetID, err := h.docService.Process(c.Request.Context(), req.FilePath)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset_id": assetID})
}

// ListDocuments handles GET /api/documents
func (h *Handler) ListDocuments(c *gin.Context) {
	documents, err := h.docService.ListDocuments(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

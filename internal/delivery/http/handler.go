package http

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gidascan/backend/internal/domain"
	"github.com/gidascan/backend/internal/usecase"
)

// ProductResolver is the resolution pipeline surface the delivery layer
// consumes. Satisfied by *usecase.Resolver.
type ProductResolver interface {
	ResolveByBarcode(ctx context.Context, code string) *domain.ResolutionResult
	ResolveByImage(ctx context.Context, image []byte, mimeType string) *domain.ResolutionResult
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver ProductResolver
}

// NewHandler creates a new HTTP handler
func NewHandler(resolver ProductResolver) *Handler {
	return &Handler{resolver: resolver}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "gidascan-backend",
		"version": "1.0.0",
	})
}

type barcodeRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

type imageRequest struct {
	Image string `json:"image" binding:"required"`
}

// ResolveBarcode resolves a scanned barcode against the product database.
func (h *Handler) ResolveBarcode(c *gin.Context) {
	var req barcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": usecase.MsgInvalidRequest})
		return
	}

	result := h.resolver.ResolveByBarcode(c.Request.Context(), req.Barcode)

	status := http.StatusOK
	switch result.Error {
	case usecase.MsgProductNotFound:
		status = http.StatusNotFound
	case usecase.MsgConnectionError:
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// ResolveImage resolves a captured label photo through vision inference.
// Classification failures come back at 200 like successes: the request
// itself worked, only the content was not a readable food label. Upstream
// transport failures come back at 502.
func (h *Handler) ResolveImage(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": usecase.MsgInvalidRequest})
		return
	}

	image, mimeType, ok := decodeImage(req.Image)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": usecase.MsgInvalidRequest})
		return
	}

	result := h.resolver.ResolveByImage(c.Request.Context(), image, mimeType)

	status := http.StatusOK
	if strings.HasPrefix(result.Error, usecase.MsgAnalysisErrorPrefix) {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// decodeImage accepts either a data URL or a bare base64 string. Data URLs
// pass through untouched (the vision adapter strips the prefix itself); bare
// base64 is decoded to raw bytes here.
func decodeImage(s string) ([]byte, string, bool) {
	if strings.HasPrefix(s, "data:") {
		return []byte(s), "", true
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) == 0 {
		return nil, "", false
	}
	return raw, "", true
}

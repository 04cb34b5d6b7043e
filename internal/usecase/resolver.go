package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gidascan/backend/internal/domain"
)

// User-facing failure messages. The UI is Turkish; raw transport errors stay
// in the logs.
const (
	MsgProductNotFound = "Ürün bulunamadı"
	MsgConnectionError = "Bağlantı hatası"
	MsgExtractionError = "Ürün bilgisi çıkarılamadı"
	MsgInvalidRequest  = "Geçersiz istek"

	// MsgAnalysisErrorPrefix prefixes vision transport failures; the short
	// reason is appended. The delivery layer keys on this prefix to tell
	// transport failures apart from classification failures.
	MsgAnalysisErrorPrefix = "Analiz hatası: "
)

// Resolver is the single entry point of the resolution pipeline. Each
// operation delegates to exactly one source adapter; there is no cross
// fallback, because vision inference is expensive and must be an explicit
// user action rather than a silent reaction to a lookup miss.
type Resolver struct {
	lookup domain.BarcodeLookup
	vision domain.VisionAnalyzer
}

// NewResolver creates a resolver over the two source adapters.
func NewResolver(lookup domain.BarcodeLookup, vision domain.VisionAnalyzer) *Resolver {
	return &Resolver{
		lookup: lookup,
		vision: vision,
	}
}

// ResolveByBarcode resolves a scanned code against the barcode database only.
func (r *Resolver) ResolveByBarcode(ctx context.Context, code string) *domain.ResolutionResult {
	if code == "" {
		return failure(MsgInvalidRequest)
	}

	product, err := r.lookup.GetProduct(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return failure(MsgProductNotFound)
		case errors.Is(err, domain.ErrInvalidRequest):
			return failure(MsgInvalidRequest)
		default:
			log.Printf("[RESOLVE] Barcode lookup failed for %q: %v", code, err)
			return failure(MsgConnectionError)
		}
	}

	return &domain.ResolutionResult{
		Success: true,
		Source:  domain.SourceDatabase,
		Product: product,
	}
}

// ResolveByImage resolves a captured label photo through vision inference
// only. A classification failure (the model saw the image but found no food
// label) surfaces the model's own message; transport failures surface a short
// analysis-error message.
func (r *Resolver) ResolveByImage(ctx context.Context, image []byte, mimeType string) *domain.ResolutionResult {
	if len(image) == 0 {
		return failure(MsgInvalidRequest)
	}

	product, err := r.vision.AnalyzeImage(ctx, image, mimeType)
	if err != nil {
		var classification *domain.ClassificationError
		switch {
		case errors.As(err, &classification):
			return failure(classification.Reason)
		case errors.Is(err, domain.ErrExtraction):
			return failure(MsgExtractionError)
		case errors.Is(err, domain.ErrInvalidRequest):
			return failure(MsgInvalidRequest)
		default:
			log.Printf("[RESOLVE] Vision analysis failed: %v", err)
			return failure(MsgAnalysisErrorPrefix + visionReason(err))
		}
	}

	return &domain.ResolutionResult{
		Success: true,
		Source:  domain.SourceVision,
		Product: product,
	}
}

// visionReason extracts the short reason the vision adapter attached to its
// sentinel error; internal detail beyond that never reaches the user.
func visionReason(err error) string {
	msg := err.Error()
	prefix := domain.ErrVisionAPIFailure.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return "istek başarısız"
}

func failure(msg string) *domain.ResolutionResult {
	return &domain.ResolutionResult{
		Success: false,
		Error:   msg,
	}
}

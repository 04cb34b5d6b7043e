package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gidascan/backend/internal/domain"
	"golang.org/x/time/rate"
)

// lookupResponse is the Open Food Facts v2 product-by-barcode envelope.
// status is 1 when the code resolved to a product, 0 otherwise.
type lookupResponse struct {
	Status  int         `json:"status"`
	Product *rawProduct `json:"product"`
}

// rawProduct is the subset of the Open Food Facts payload the mapper consumes.
// Nutriments stays loosely typed: the per-nutrient keys have multiple
// historical spellings and mixed number/string values.
type rawProduct struct {
	ProductNameTR     string         `json:"product_name_tr"`
	ProductName       string         `json:"product_name"`
	Brands            string         `json:"brands"`
	CategoriesTags    []string       `json:"categories_tags"`
	ServingSize       string         `json:"serving_size"`
	ImageFrontURL     string         `json:"image_front_url"`
	ImageURL          string         `json:"image_url"`
	Nutriments        map[string]any `json:"nutriments"`
	IngredientsTextTR string         `json:"ingredients_text_tr"`
	IngredientsText   string         `json:"ingredients_text"`
	AdditivesTags     []string       `json:"additives_tags"`
	NovaGroup         any            `json:"nova_group"` // number or string depending on record age
	NutriscoreGrade   string         `json:"nutriscore_grade"`
	AllergensTags     []string       `json:"allergens_tags"`
}

// Client handles communication with the Open Food Facts API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Open Food Facts client. The API asks unauthenticated
// clients to stay under 100 product queries per minute and to send an
// identifying User-Agent.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Limit(100.0/60.0), 10)

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: limiter,
	}
}

// GetProduct looks up a product by barcode and maps it to the canonical
// record. The barcode is treated as an opaque identifier; no checksum
// validation is performed. Transport details are logged here and never leave
// the adapter as anything other than domain.ErrLookupFailure.
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, domain.ErrInvalidRequest
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[OFF] Request error for barcode %q: %v", barcode, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailure, err)
	}
	defer resp.Body.Close()

	// Unknown barcodes come back as 404 with a status:0 body.
	if resp.StatusCode == http.StatusNotFound {
		log.Printf("[OFF] No product for barcode %q", barcode)
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[OFF] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrLookupFailure, resp.StatusCode)
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		log.Printf("[OFF] JSON decode error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailure, err)
	}

	if lookup.Status != 1 || lookup.Product == nil {
		log.Printf("[OFF] No product for barcode %q", barcode)
		return nil, domain.ErrProductNotFound
	}

	return mapProduct(lookup.Product), nil
}

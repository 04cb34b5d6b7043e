package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gidascan/backend/internal/domain"
	"golang.org/x/time/rate"
)

const anthropicVersion = "2023-06-01"

// messagesRequest is the Anthropic messages API request envelope.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// messagesResponse is the subset of the response the adapter reads.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client handles communication with the Anthropic vision backend.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	rateLimiter *rate.Limiter
}

// NewClient creates a new vision inference client.
func NewClient(apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if maxTokens == 0 {
		maxTokens = 2000
	}
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		rateLimiter: limiter,
	}
}

// AnalyzeImage sends a label photo with the fixed extraction instruction and
// parses the canonical product out of the model's text. Transport and backend
// errors surface as wrapped domain.ErrVisionAPIFailure carrying only a short
// reason; a model-side "not a food label" verdict surfaces as
// *domain.ClassificationError.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*domain.Product, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	data, mediaType := encodeImage(image, mimeType)

	payload := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: mediaType,
							Data:      data,
						},
					},
					{
						Type: "text",
						Text: extractionPrompt,
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVisionAPIFailure, err)
	}

	reqURL := fmt.Sprintf("%s/v1/messages", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVisionAPIFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[VISION] Request error: %v", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrVisionAPIFailure, shortReason(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[VISION] Read error: %v", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrVisionAPIFailure, shortReason(err))
	}

	var result messagesResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("[VISION] API error - Status: %d, Body: %s", resp.StatusCode, string(raw))
		return nil, fmt.Errorf("%w: status %d", domain.ErrVisionAPIFailure, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[VISION] API error - Status: %d, Body: %s", resp.StatusCode, string(raw))
		if result.Error != nil && result.Error.Type != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrVisionAPIFailure, result.Error.Type)
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrVisionAPIFailure, resp.StatusCode)
	}

	text := responseText(result)
	if text == "" {
		log.Printf("[VISION] Empty response content")
		return nil, fmt.Errorf("%w: empty response", domain.ErrVisionAPIFailure)
	}

	return parseProduct(text)
}

// responseText concatenates the text blocks of the model response.
func responseText(resp messagesResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// encodeImage produces the base64 payload and media type for the image block.
// Callers may hand over raw bytes or a full data URL; any data-URL prefix is
// stripped and its media type honored.
func encodeImage(image []byte, mimeType string) (string, string) {
	if bytes.HasPrefix(image, []byte("data:")) {
		s := string(image)
		if comma := strings.Index(s, ","); comma >= 0 {
			header := s[len("data:"):comma]
			data := s[comma+1:]
			mediaType := strings.TrimSuffix(header, ";base64")
			if mediaType == "" {
				mediaType = "image/jpeg"
			}
			return data, mediaType
		}
	}

	mediaType := mimeType
	if mediaType == "" {
		mediaType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = "image/jpeg"
	}
	return base64.StdEncoding.EncodeToString(image), mediaType
}

// shortReason reduces a transport error to a brief, non-leaky description.
func shortReason(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		msg = msg[idx+2:]
	}
	if len(msg) > 80 {
		msg = msg[:80]
	}
	return msg
}

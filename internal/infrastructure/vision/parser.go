package vision

import (
	"encoding/json"
	"strings"

	"github.com/gidascan/backend/internal/domain"
	"github.com/gidascan/backend/internal/normalize"
)

// visionPayload is the JSON schema the extraction prompt mandates. Nutrition
// stays loosely typed because the model occasionally emits numeric strings.
type visionPayload struct {
	Error       string         `json:"error"`
	Name        string         `json:"name"`
	Brand       string         `json:"brand"`
	Category    string         `json:"category"`
	ServingSize string         `json:"serving_size"`
	Nutrition   map[string]any `json:"nutrition"`
	Ingredients string         `json:"ingredients"`
	Additives   []string       `json:"additives"`
	NovaGroup   any            `json:"nova_group"`
	NutriScore  string         `json:"nutri_score"`
}

// parseProduct scans the model's free-form text for the first balanced JSON
// object and maps it to the canonical Product. The model's sentinel
// {"error": ...} object becomes a *domain.ClassificationError; anything that
// does not contain a decodable object becomes domain.ErrExtraction.
func parseProduct(text string) (*domain.Product, error) {
	obj := extractObject(text)
	if obj == "" {
		return nil, domain.ErrExtraction
	}

	var payload visionPayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, domain.ErrExtraction
	}

	if payload.Error != "" {
		return nil, &domain.ClassificationError{Reason: payload.Error}
	}

	serving := payload.ServingSize
	if serving == "" {
		serving = "100g"
	}

	return &domain.Product{
		Name:        payload.Name,
		Brand:       payload.Brand,
		Category:    normalize.Category([]string{payload.Category}),
		ServingSize: serving,
		Image:       nil, // vision inference never yields an image URL
		Nutrition:   normalize.Nutrition(payload.Nutrition),
		Ingredients: payload.Ingredients,
		Additives:   upperAll(payload.Additives),
		NovaGroup:   normalize.NovaGroup(payload.NovaGroup),
		NutriScore:  normalize.NutriScore(payload.NutriScore),
		Allergens:   []string{},
	}, nil
}

// extractObject returns the first balanced {...} object in text, or "" when
// none exists. The scan is string- and escape-aware so braces inside string
// values cannot unbalance the match.
func extractObject(text string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// upperAll uppercases each additive token, keeping source order. A nil slice
// (field absent from the model output) becomes an empty one.
func upperAll(additives []string) []string {
	out := make([]string, 0, len(additives))
	for _, a := range additives {
		out = append(out, strings.ToUpper(a))
	}
	return out
}

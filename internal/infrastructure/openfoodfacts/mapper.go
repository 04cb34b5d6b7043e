package openfoodfacts

import (
	"strings"

	"github.com/gidascan/backend/internal/domain"
	"github.com/gidascan/backend/internal/normalize"
)

// Fallbacks when the record has no Turkish or plain name/brand.
const (
	unknownName  = "Bilinmeyen Ürün"
	unknownBrand = "Bilinmeyen Marka"

	defaultServingSize = "100g"
)

// mapProduct converts a raw Open Food Facts payload to the canonical Product.
// The mapping is total: every canonical field is populated even when the
// source record is sparse.
func mapProduct(raw *rawProduct) *domain.Product {
	return &domain.Product{
		Name:        firstNonEmpty(raw.ProductNameTR, raw.ProductName, unknownName),
		Brand:       firstNonEmpty(raw.Brands, unknownBrand),
		Category:    normalize.Category(raw.CategoriesTags),
		ServingSize: firstNonEmpty(raw.ServingSize, defaultServingSize),
		Image:       imageURL(raw),
		Nutrition:   normalize.Nutrition(raw.Nutriments),
		Ingredients: firstNonEmpty(raw.IngredientsTextTR, raw.IngredientsText),
		Additives:   mapAdditives(raw.AdditivesTags),
		NovaGroup:   normalize.NovaGroup(raw.NovaGroup),
		NutriScore:  normalize.NutriScore(raw.NutriscoreGrade),
		Allergens:   append([]string{}, raw.AllergensTags...),
	}
}

// imageURL prefers the front photo over the generic one; nil when the record
// has neither.
func imageURL(raw *rawProduct) *string {
	if raw.ImageFrontURL != "" {
		u := raw.ImageFrontURL
		return &u
	}
	if raw.ImageURL != "" {
		u := raw.ImageURL
		return &u
	}
	return nil
}

// mapAdditives strips the tag namespace and uppercases each E-code, keeping
// source order. Duplicates are passed through as-is.
func mapAdditives(tags []string) []string {
	additives := make([]string, 0, len(tags))
	for _, tag := range tags {
		if idx := strings.Index(tag, ":"); idx >= 0 {
			tag = tag[idx+1:]
		}
		additives = append(additives, strings.ToUpper(tag))
	}
	return additives
}

// firstNonEmpty returns the first non-empty string, or "" when all are empty.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

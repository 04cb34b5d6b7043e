package normalize

import (
	"strings"

	"github.com/gidascan/backend/internal/domain"
)

// categoryRule maps a lowercase substring onto the closed taxonomy. Rules are
// checked in table order for each tag in turn, so the first (tag, rule) hit by
// source order then table order decides the category.
type categoryRule struct {
	substr   string
	category domain.Category
}

// categoryRules covers the Open Food Facts English tag vocabulary and the
// Turkish free-form category strings the vision backend emits.
var categoryRules = []categoryRule{
	{"beverage", domain.CategoryBeverage},
	{"drink", domain.CategoryBeverage},
	{"içecek", domain.CategoryBeverage},
	{"snack", domain.CategorySnack},
	{"atıştırmalık", domain.CategorySnack},
	{"chips", domain.CategorySnack},
	{"cips", domain.CategorySnack},
	{"dairy", domain.CategoryDairy},
	{"milk", domain.CategoryDairy},
	{"cheese", domain.CategoryDairy},
	{"yogurt", domain.CategoryDairy},
	{"süt", domain.CategoryDairy},
	{"peynir", domain.CategoryDairy},
	{"cereal", domain.CategoryGrain},
	{"bread", domain.CategoryGrain},
	{"grain", domain.CategoryGrain},
	{"pasta", domain.CategoryGrain},
	{"tahıl", domain.CategoryGrain},
	{"ekmek", domain.CategoryGrain},
	{"makarna", domain.CategoryGrain},
	{"meat", domain.CategoryMeat},
	{"sausage", domain.CategoryMeat},
	{"sucuk", domain.CategoryMeat},
	{"et ürün", domain.CategoryMeat},
	{"frozen", domain.CategoryFrozen},
	{"dondur", domain.CategoryFrozen},
	{"canned", domain.CategoryCanned},
	{"konserve", domain.CategoryCanned},
}

// Category maps an ordered sequence of source tags onto the closed taxonomy.
// Tags may carry a vendor namespace prefix ("en:beverages") which is stripped
// before matching. The first tag that matches any rule wins, with rules tried
// in table order; no match across all tags yields CategoryOther.
func Category(tags []string) domain.Category {
	for _, tag := range tags {
		t := normalizeTag(tag)
		if t == "" {
			continue
		}
		for _, rule := range categoryRules {
			if strings.Contains(t, rule.substr) {
				return rule.category
			}
		}
	}
	return domain.CategoryOther
}

// normalizeTag strips a "namespace:" prefix and lowercases the remainder.
// Turkish dotted capital İ lowercases to "i" plus a combining dot (U+0307);
// fold it back so "İçecek" matches the plain "içecek" rule.
func normalizeTag(tag string) string {
	if idx := strings.Index(tag, ":"); idx >= 0 {
		tag = tag[idx+1:]
	}
	t := strings.ToLower(strings.TrimSpace(tag))
	return strings.ReplaceAll(t, "i̇", "i")
}

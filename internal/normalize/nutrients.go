package normalize

import (
	"math"
	"strconv"

	"github.com/gidascan/backend/internal/domain"
)

// Candidate keys per canonical nutrient, most specific first. The Open Food
// Facts nutriments object has accumulated several historical spellings for the
// same value; the vision backend uses the short canonical names. The first key
// present in the source map wins.
var (
	energyKeys   = []string{"energy-kcal_100g", "energy_100g", "energy"}
	proteinKeys  = []string{"proteins_100g", "protein_100g", "protein"}
	carbKeys     = []string{"carbohydrates_100g", "carbohydrate_100g", "carbohydrates"}
	sugarKeys    = []string{"sugars_100g", "sugar_100g", "sugar"}
	fatKeys      = []string{"fat_100g", "fats_100g", "fat"}
	satFatKeys   = []string{"saturated-fat_100g", "saturated_fat_100g", "saturated_fat"}
	fiberKeys    = []string{"fiber_100g", "fibers_100g", "fiber"}
	saltKeys     = []string{"salt_100g", "salt"}
)

// Nutrition extracts the eight canonical nutrient values from a loosely-typed
// source map, understood as per 100 g / 100 ml. Missing or non-numeric values
// default to 0 and negatives are floored at 0. Precision is a label
// convention: energy whole kcal, salt two decimals, everything else one.
func Nutrition(values map[string]any) domain.Nutrition {
	return domain.Nutrition{
		Energy:        round(first(values, energyKeys), 0),
		Protein:       round(first(values, proteinKeys), 1),
		Carbohydrates: round(first(values, carbKeys), 1),
		Sugar:         round(first(values, sugarKeys), 1),
		Fat:           round(first(values, fatKeys), 1),
		SaturatedFat:  round(first(values, satFatKeys), 1),
		Fiber:         round(first(values, fiberKeys), 1),
		Salt:          round(first(values, saltKeys), 2),
	}
}

// first returns the value of the first candidate key that coerces to a number.
func first(values map[string]any, keys []string) float64 {
	for _, key := range keys {
		if raw, ok := values[key]; ok {
			if v, ok := coerce(raw); ok {
				return v
			}
		}
	}
	return 0
}

// coerce converts a loosely-typed nutriment value to float64. Open Food Facts
// serves numbers and numeric strings interchangeably depending on record age.
func coerce(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// round rounds v to the given number of decimal places, flooring negatives
// at zero first.
func round(v float64, places int) float64 {
	if v < 0 {
		return 0
	}
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

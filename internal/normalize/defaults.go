package normalize

import (
	"strconv"
	"strings"
)

const defaultNovaGroup = 3

// NovaGroup coerces a loosely-typed NOVA classification value. Open Food
// Facts serves it as a number or a string depending on record age; the vision
// backend emits a JSON number. Missing, unparseable, or out-of-range values
// fall back to group 3.
func NovaGroup(raw any) int {
	var group int
	switch v := raw.(type) {
	case float64:
		group = int(v)
	case int:
		group = v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return defaultNovaGroup
		}
		group = n
	default:
		return defaultNovaGroup
	}

	if group < 1 || group > 4 {
		return defaultNovaGroup
	}
	return group
}

// NutriScore uppercases a Nutri-Score grade and rejects anything outside A-E.
func NutriScore(grade string) *string {
	g := strings.ToUpper(strings.TrimSpace(grade))
	switch g {
	case "A", "B", "C", "D", "E":
		return &g
	}
	return nil
}

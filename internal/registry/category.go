package registry

import (
	"strings"
)

// Category is a user-assigned discipline label. It never reaches the
// pipeline; it exists for client-side grouping and bulk selection.
type Category string

const (
	CategoryUnspecified   Category = "unspecified"
	CategoryArchitectural Category = "architectural"
	CategoryStructural    Category = "structural"
	CategoryMEP           Category = "mep"
)

var allCategories = []Category{
	CategoryUnspecified,
	CategoryArchitectural,
	CategoryStructural,
	CategoryMEP,
}

func Categories() []string {
	result := make([]string, len(allCategories))
	for i, category := range allCategories {
		result[i] = string(category)
	}
	return result
}

// StringToCategory maps a stored category value back to the enum. Unknown
// values fall back to unspecified.
func StringToCategory(s string) Category {
	for _, category := range allCategories {
		if s == string(category) {
			return category
		}
	}
	return CategoryUnspecified
}

// CanonicalizeCategory maps free-form user input to a known category. The
// second return value reports whether the input was recognised.
func CanonicalizeCategory(input string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "unspecified", "none":
		return CategoryUnspecified, true
	case "architectural", "architecture", "arch":
		return CategoryArchitectural, true
	case "structural", "structure", "struct":
		return CategoryStructural, true
	case "mep", "mechanical", "m&e", "services":
		return CategoryMEP, true
	default:
		return CategoryUnspecified, false
	}
}

package catalog

import (
	"fmt"
	"strings"
)

// Filter returns the products of catalog that belong to category and contain
// query, in catalog order. Category matching is exact and case-sensitive;
// AllCategories matches every product. Query matching is a case-insensitive
// substring test against the title, description and category. An empty query
// matches everything.
//
// The result is never nil and never aliases catalog's backing array.
func Filter(catalog []Product, query, category string) ([]Product, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is nil", ErrInvalidInput)
	}
	if category == "" {
		return nil, fmt.Errorf("%w: category is empty", ErrInvalidInput)
	}

	needle := strings.ToLower(query)

	result := make([]Product, 0, len(catalog))
	for _, p := range catalog {
		if category != AllCategories && p.Category != category {
			continue
		}
		if query != "" && !matchesText(p, needle) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func matchesText(p Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}

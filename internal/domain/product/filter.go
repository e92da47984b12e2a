package product

import "strings"

// Filter selects catalog entries for the storefront browser. A zero Filter
// matches everything.
type Filter struct {
	// Category restricts results to one category; empty means all.
	Category Category
	// Query is matched case-insensitively against the product name.
	Query string
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query))
}

// Apply returns the products matching f, preserving order.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

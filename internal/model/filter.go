package model

import "strings"

// Filter selects which expiry bucket of the active list is shown.
type Filter string

const (
	FilterAll          Filter = "All"
	FilterExpired      Filter = "Expired"
	FilterExpiringSoon Filter = "Expiring Soon"
	FilterGood         Filter = "Good"
)

// AllFilters lists the filters in display order.
func AllFilters() []Filter {
	return []Filter{FilterAll, FilterExpired, FilterExpiringSoon, FilterGood}
}

// ParseFilter resolves a label such as "Expiring Soon", "expiring-soon" or "expiringsoon".
// An empty value selects FilterAll.
func ParseFilter(value string) (Filter, error) {
	normalised := strings.ToLower(strings.TrimSpace(value))
	normalised = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalised)

	switch normalised {
	case "", "all":
		return FilterAll, nil
	case "expired":
		return FilterExpired, nil
	case "expiringsoon", "soon":
		return FilterExpiringSoon, nil
	case "good":
		return FilterGood, nil
	}
	return FilterAll, ErrInvalidFilter
}

// Matches is the predicate behind each filter.
func (f Filter) Matches(product Product, policy ExpiryPolicy) bool {
	switch f {
	case FilterExpired:
		return policy.IsExpired(product)
	case FilterExpiringSoon:
		return policy.IsExpiringSoon(product)
	case FilterGood:
		return policy.IsGood(product)
	default:
		return true
	}
}

// Next returns the filter after f in display order, wrapping around.
func (f Filter) Next() Filter {
	filters := AllFilters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return FilterAll
}

// Prev returns the filter before f in display order, wrapping around.
func (f Filter) Prev() Filter {
	filters := AllFilters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+len(filters)-1)%len(filters)]
		}
	}
	return FilterAll
}

// ApplyFilter derives the filtered sequence. FilterAll returns products unmodified.
func ApplyFilter(products []Product, f Filter, policy ExpiryPolicy) []Product {
	if f == FilterAll || f == "" {
		return products
	}

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p, policy) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

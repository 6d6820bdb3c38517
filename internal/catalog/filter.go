package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// OtherBrand selects every product whose brand is not a known brand.
const OtherBrand = "Other"

var ErrInvalidFilter = errors.New("invalid filter")

// FilterConfig holds the category and brand enumerations the storefront
// offers. Brands may include OtherBrand; it is never treated as a known brand.
type FilterConfig struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Categories: []string{
			"Electronics", "Food & Beverages", "Furniture", "Sports", "Fashion",
			"Kitchen", "Health & Beauty", "Accessories", "Home Decor", "Books",
		},
		Brands: []string{
			"Apple", "Google", "Microsoft", "Amazon", "Samsung", "Sony", "Netflix",
			"Nike", "Adidas", "Levi's", "Zara", "Toyota", "Tesla", "Mercedes-Benz",
			"Tata Motors", "Coca-Cola", "McDonald's", "Starbucks", "Amul", "Visa",
			"Reliance", "Disney", OtherBrand,
		},
	}
}

func (c FilterConfig) knownBrands() map[string]struct{} {
	known := make(map[string]struct{}, len(c.Brands))
	for _, b := range c.Brands {
		if b != OtherBrand {
			known[b] = struct{}{}
		}
	}
	return known
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FullPriceRange admits every non-negative price.
var FullPriceRange = PriceRange{Min: 0, Max: math.Inf(1)}

type Filter struct {
	Search     string
	Categories []string
	Brands     []string
	Price      PriceRange
	MinRating  float64
}

// NewFilter returns a filter that matches every product.
func NewFilter() Filter {
	return Filter{Price: FullPriceRange}
}

// Apply returns the products matching every criterion of f, in input order.
func Apply(products []Product, f Filter, cfg FilterConfig) []Product {
	term := strings.ToLower(f.Search)
	known := cfg.knownBrands()

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !matchesSearch(p, term) ||
			!matchesCategory(p, f.Categories) ||
			!matchesBrand(p, f.Brands, known) ||
			p.Price < f.Price.Min || p.Price > f.Price.Max ||
			p.Rating < f.MinRating {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p Product, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Brand), term)
}

func matchesCategory(p Product, categories []string) bool {
	return len(categories) == 0 || slices.Contains(categories, p.Category)
}

func matchesBrand(p Product, brands []string, known map[string]struct{}) bool {
	if len(brands) == 0 {
		return true
	}
	for _, b := range brands {
		if b == OtherBrand {
			if _, ok := known[p.Brand]; p.Brand != "" && !ok {
				return true
			}
			continue
		}
		if p.Brand == b {
			return true
		}
	}
	return false
}

// ParseFilter reads q, category, brands, minPrice, maxPrice and minRating.
func ParseFilter(q url.Values) (Filter, error) {
	f := NewFilter()
	f.Search = strings.TrimSpace(q.Get("q"))
	f.Categories = splitList(q["category"])
	f.Brands = splitList(q["brands"])

	var err error
	if f.Price.Min, err = parseNumber(q, "minPrice", f.Price.Min); err != nil {
		return Filter{}, err
	}
	if f.Price.Max, err = parseNumber(q, "maxPrice", f.Price.Max); err != nil {
		return Filter{}, err
	}
	if f.MinRating, err = parseNumber(q, "minRating", 0); err != nil {
		return Filter{}, err
	}
	if f.Price.Min > f.Price.Max {
		return Filter{}, fmt.Errorf("%w: minPrice greater than maxPrice", ErrInvalidFilter)
	}
	return f, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseNumber(q url.Values, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidFilter, key)
	}
	return v, nil
}

package catalog

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func sampleCatalog() []Product {
	return []Product{
		{ID: "A", Name: "Bravia TV", Category: "Electronics", Price: 100, Brand: "Sony", Rating: 4.5},
		{ID: "B", Name: "Go Handbook", Category: "Books", Price: 20, Brand: "Other", Rating: 3},
	}
}

func TestApply_Scenario(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	products := sampleCatalog()

	tests := []struct {
		name   string
		mutate func(*Filter)
		want   []string
	}{
		{name: "no criteria", mutate: func(*Filter) {}, want: []string{"A", "B"}},
		{name: "category", mutate: func(f *Filter) { f.Categories = []string{"Electronics"} }, want: []string{"A"}},
		{name: "price range", mutate: func(f *Filter) { f.Price = PriceRange{Min: 0, Max: 50} }, want: []string{"B"}},
		{name: "other brand", mutate: func(f *Filter) { f.Brands = []string{OtherBrand} }, want: []string{"B"}},
		{name: "min rating", mutate: func(f *Filter) { f.MinRating = 4 }, want: []string{"A"}},
		{name: "inclusive bounds", mutate: func(f *Filter) { f.Price = PriceRange{Min: 20, Max: 100} }, want: []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter()
			tt.mutate(&f)
			if diff := cmp.Diff(tt.want, ids(Apply(products, f, cfg))); diff != "" {
				t.Fatalf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_SearchOnly(t *testing.T) {
	t.Parallel()

	products := []Product{
		{ID: "1", Name: "iPhone", Brand: "Apple", Price: 999},
		{ID: "2", Name: "Galaxy", Brand: "Samsung", Price: 899},
		{ID: "3", Name: "Pineapple Juice", Brand: "Amul", Price: 2},
	}

	f := NewFilter()
	f.Search = "APPLE"
	assert.Equal(t, []string{"1", "3"}, ids(Apply(products, f, DefaultFilterConfig())))

	f.Search = ""
	assert.Equal(t, []string{"1", "2", "3"}, ids(Apply(products, f, DefaultFilterConfig())))
}

func TestApply_OtherBrandMatchesOnlyUnknownBrands(t *testing.T) {
	t.Parallel()

	cfg := FilterConfig{Brands: []string{"Apple", "Sony", OtherBrand}}
	products := []Product{
		{ID: "1", Brand: "Apple"},
		{ID: "2", Brand: "Acme"},
		{ID: "3", Brand: "Sony"},
		{ID: "4", Brand: "Other"},
		{ID: "5", Brand: ""},
	}

	f := NewFilter()
	f.Brands = []string{OtherBrand}
	assert.Equal(t, []string{"2", "4"}, ids(Apply(products, f, cfg)))

	f.Brands = []string{OtherBrand, "Sony"}
	assert.Equal(t, []string{"2", "3", "4"}, ids(Apply(products, f, cfg)))
}

func TestApply_ConfigIsExplicit(t *testing.T) {
	t.Parallel()

	products := []Product{{ID: "1", Brand: "Acme"}}
	f := NewFilter()
	f.Brands = []string{OtherBrand}

	assert.Len(t, Apply(products, f, DefaultFilterConfig()), 1)
	assert.Empty(t, Apply(products, f, FilterConfig{Brands: []string{"Acme"}}))
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	q := url.Values{}
	q.Set("q", " tv ")
	q.Set("category", "Electronics,Books")
	q.Add("brands", "Sony")
	q.Add("brands", "Other")
	q.Set("minPrice", "10")
	q.Set("maxPrice", "500.5")
	q.Set("minRating", "3.5")

	f, err := ParseFilter(q)
	require.NoError(t, err)
	assert.Equal(t, "tv", f.Search)
	assert.Equal(t, []string{"Electronics", "Books"}, f.Categories)
	assert.Equal(t, []string{"Sony", "Other"}, f.Brands)
	assert.Equal(t, PriceRange{Min: 10, Max: 500.5}, f.Price)
	assert.InDelta(t, 3.5, f.MinRating, 1e-9)
}

func TestParseFilter_Defaults(t *testing.T) {
	t.Parallel()

	f, err := ParseFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, FullPriceRange, f.Price)
	assert.Empty(t, f.Categories)
	assert.Empty(t, f.Brands)
}

func TestParseFilter_Invalid(t *testing.T) {
	t.Parallel()

	for _, q := range []url.Values{
		{"minPrice": {"cheap"}},
		{"maxPrice": {"-1"}},
		{"minRating": {"NaN"}},
		{"minPrice": {"10"}, "maxPrice": {"5"}},
	} {
		_, err := ParseFilter(q)
		assert.ErrorIs(t, err, ErrInvalidFilter, q.Encode())
	}
}

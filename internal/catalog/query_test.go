package catalog

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/models"
)

func TestParseSearchParams(t *testing.T) {
	values := url.Values{
		"q":                    {"blue phone"},
		"category":             {"phones"},
		"price[gte]":           {"100"},
		"price[lt]":            {"900.5"},
		"rating[gt]":           {"3"},
		"sort_by":              {"price-desc"},
		"page":                 {"2"},
		"limit":                {"10"},
		"discountPercent[lte]": {"40"},
	}
	p := ParseSearchParams(values)

	assert.Equal(t, "blue phone", p.Query)
	assert.Equal(t, "phones", p.Category)
	assert.Equal(t, "price-desc", p.Sort)
	assert.Equal(t, map[string]map[string]string{
		"price":           {"gte": "100", "lt": "900.5"},
		"rating":          {"gt": "3"},
		"discountPercent": {"lte": "40"},
	}, p.Ranges)
}

func TestBuildQuery(t *testing.T) {
	spec, err := BuildQuery(SearchParams{
		Query:  "  blue   phone ",
		Brand:  "Acme",
		Ranges: map[string]map[string]string{"price": {"gte": "100", "lte": "500"}},
		Sort:   "price-desc",
		Page:   "-3",
		Limit:  "10",
	}, DefaultLimits)
	require.NoError(t, err)

	assert.Equal(t, []string{"blue", "phone"}, spec.Tokens)
	assert.Equal(t, "Acme", spec.Brand)
	assert.Equal(t, []RangeCond{
		{Field: "price", Op: OpGte, Value: 100},
		{Field: "price", Op: OpLte, Value: 500},
	}, spec.Ranges)
	assert.Equal(t, &SortSpec{Field: "price", Desc: true}, spec.Sort)
	assert.Equal(t, 3, spec.Page)
	assert.Equal(t, 10, spec.Limit)
	assert.Equal(t, 20, spec.Skip)
}

func TestBuildQueryRejectsMalformedFilters(t *testing.T) {
	tests := []struct {
		name   string
		params SearchParams
		field  string
	}{
		{
			name:   "non numeric bound",
			params: SearchParams{Ranges: map[string]map[string]string{"price": {"gte": "cheap"}}},
			field:  "price[gte]",
		},
		{
			name:   "unknown bound",
			params: SearchParams{Ranges: map[string]map[string]string{"rating": {"between": "1"}}},
			field:  "rating[between]",
		},
		{
			name:   "field without ranges",
			params: SearchParams{Ranges: map[string]map[string]string{"title": {"gt": "1"}}},
			field:  "title",
		},
		{
			name:   "nan bound",
			params: SearchParams{Ranges: map[string]map[string]string{"ratingCount": {"lt": "NaN"}}},
			field:  "ratingCount[lt]",
		},
		{
			name:   "unknown sort field",
			params: SearchParams{Sort: "password-asc"},
			field:  "sort",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQuery(tt.params, DefaultLimits)
			requireField(t, err, ErrInvalidFilterValue, tt.field)
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		key  string
		want *SortSpec
	}{
		{key: "", want: nil},
		{key: "price-desc", want: &SortSpec{Field: "price", Desc: true}},
		{key: "price-asc", want: &SortSpec{Field: "price"}},
		{key: "price-DESC", want: &SortSpec{Field: "price"}},
		{key: "price", want: &SortSpec{Field: "price"}},
		{key: "rating-sideways", want: &SortSpec{Field: "rating"}},
		{key: "ratingCount-desc", want: &SortSpec{Field: "ratingCount", Desc: true}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseSort(tt.key, ProductSortFields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePaging(t *testing.T) {
	limits := Limits{Default: 20, Max: 50}
	tests := []struct {
		name              string
		page, limit       string
		wantPage, wantLim int
	}{
		{name: "defaults", wantPage: 1, wantLim: 20},
		{name: "absolute page", page: "-2", limit: "5", wantPage: 2, wantLim: 5},
		{name: "zero page", page: "0", wantPage: 1, wantLim: 20},
		{name: "garbage", page: "abc", limit: "xyz", wantPage: 1, wantLim: 20},
		{name: "clamped limit", page: "1", limit: "500", wantPage: 1, wantLim: 50},
		{name: "negative limit", limit: "-7", wantPage: 1, wantLim: 7},
		{name: "min int page", page: strconv.Itoa(math.MinInt), limit: "20", wantPage: math.MaxInt / 20, wantLim: 20},
		{name: "max int page", page: strconv.Itoa(math.MaxInt), limit: "20", wantPage: math.MaxInt / 20, wantLim: 20},
		{name: "page beyond int range", page: "99999999999999999999999", wantPage: 1, wantLim: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := ParsePaging(tt.page, tt.limit, limits)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLim, limit)
		})
	}
}

func TestPagination(t *testing.T) {
	spec, err := BuildQuery(SearchParams{Page: "2", Limit: "20"}, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, 20, spec.Skip)
	assert.Equal(t, 3, spec.TotalPages(45))
	assert.Equal(t, 0, spec.TotalPages(0))
	assert.Equal(t, 1, TotalPages(20, 20))
}

func TestBuildQueryHugePageKeepsSkipNonNegative(t *testing.T) {
	for _, page := range []string{strconv.Itoa(math.MinInt), strconv.Itoa(math.MaxInt), "-1", "0"} {
		spec, err := BuildQuery(SearchParams{Page: page, Limit: "20"}, DefaultLimits)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, spec.Page, 1, page)
		assert.GreaterOrEqual(t, spec.Skip, 0, page)
	}
}

func TestMatchesText(t *testing.T) {
	tokens := Tokenize("blue phone")

	assert.True(t, MatchesText(&models.Product{Title: "Blue Smart Phone 128GB"}, tokens))
	assert.True(t, MatchesText(&models.Product{Title: "PHONE, blue"}, tokens))
	assert.False(t, MatchesText(&models.Product{Title: "Smart Phone"}, tokens))

	sized := &models.Product{
		Title: "Smart Phone",
		Sizes: []models.SizeEntry{{Title: "Smart Phone 64GB"}, {Title: "Smart Phone Blue 128GB"}},
	}
	assert.True(t, MatchesText(sized, tokens))

	// Tokens must meet in one title, not across the parent and a size.
	split := &models.Product{Title: "Blue Case", Sizes: []models.SizeEntry{{Title: "Phone Case"}}}
	assert.False(t, MatchesText(split, tokens))
}

func TestFilterSpecMatch(t *testing.T) {
	p := &models.Product{
		Title:           "Blue Smart Phone",
		Category:        "phones",
		Brand:           "Acme",
		Price:           499,
		DiscountPercent: 15,
		Rating:          4.2,
		RatingCount:     31,
	}

	tests := []struct {
		name   string
		params SearchParams
		want   bool
	}{
		{name: "empty filter", want: true},
		{name: "category hit", params: SearchParams{Category: "phones"}, want: true},
		{name: "brand miss", params: SearchParams{Brand: "Other"}, want: false},
		{name: "price window", params: SearchParams{Ranges: map[string]map[string]string{"price": {"gte": "499", "lt": "500"}}}, want: true},
		{name: "price exclusive bound", params: SearchParams{Ranges: map[string]map[string]string{"price": {"gt": "499"}}}, want: false},
		{name: "rating and count", params: SearchParams{Ranges: map[string]map[string]string{"rating": {"gte": "4"}, "ratingCount": {"lte": "31"}}}, want: true},
		{name: "discount", params: SearchParams{Ranges: map[string]map[string]string{"discountPercent": {"gte": "20"}}}, want: false},
		{name: "text", params: SearchParams{Query: "smart blue"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := BuildQuery(tt.params, DefaultLimits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Match(p))
		})
	}
}

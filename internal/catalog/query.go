package catalog

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/GTDGit/catalog_api/internal/models"
)

// Range bound operators accepted in query strings, e.g. price[gte]=100.
const (
	OpGt  = "gt"
	OpGte = "gte"
	OpLt  = "lt"
	OpLte = "lte"
)

// RangeFields are the numeric product fields that accept range bounds.
var RangeFields = []string{"price", "rating", "ratingCount", "discountPercent"}

// ProductSortFields maps accepted sort keys to stored field names.
var ProductSortFields = map[string]string{
	"price":           "price",
	"rating":          "rating",
	"ratingCount":     "ratingCount",
	"discountPercent": "discountPercent",
	"title":           "title",
	"createdAt":       "createdAt",
}

// Limits bound the page size of list endpoints.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits is used when no configuration overrides it.
var DefaultLimits = Limits{Default: 20, Max: 50}

// SearchParams is the raw, unvalidated search request.
type SearchParams struct {
	Query    string
	Category string
	Brand    string
	// Ranges holds raw bounds keyed by field then operator.
	Ranges map[string]map[string]string
	Sort   string
	Page   string
	Limit  string
}

// ParseSearchParams collects search parameters from a query string.
// Bracketed keys like price[gte] become range bounds.
func ParseSearchParams(values url.Values) SearchParams {
	p := SearchParams{
		Query:    values.Get("q"),
		Category: values.Get("category"),
		Brand:    values.Get("brand"),
		Sort:     values.Get("sort"),
		Page:     values.Get("page"),
		Limit:    values.Get("limit"),
	}
	if p.Sort == "" {
		p.Sort = values.Get("sort_by")
	}
	for key, vs := range values {
		open := strings.IndexByte(key, '[')
		if open <= 0 || !strings.HasSuffix(key, "]") || len(vs) == 0 {
			continue
		}
		field, op := key[:open], key[open+1:len(key)-1]
		if p.Ranges == nil {
			p.Ranges = make(map[string]map[string]string)
		}
		if p.Ranges[field] == nil {
			p.Ranges[field] = make(map[string]string)
		}
		p.Ranges[field][op] = vs[0]
	}
	return p
}

// RangeCond is one numeric comparison on a field.
type RangeCond struct {
	Field string
	Op    string
	Value float64
}

// SortSpec orders results by a single field.
type SortSpec struct {
	Field string
	Desc  bool
}

// FilterSpec is the validated, storage-agnostic form of a search.
type FilterSpec struct {
	Tokens   []string
	Category string
	Brand    string
	Ranges   []RangeCond
	Sort     *SortSpec
	Page     int
	Limit    int
	Skip     int
}

// BuildQuery validates params and produces the filter, sort and paging of a
// product search. Malformed range values fail with ErrInvalidFilterValue.
func BuildQuery(params SearchParams, limits Limits) (*FilterSpec, error) {
	spec := &FilterSpec{
		Tokens:   Tokenize(params.Query),
		Category: strings.TrimSpace(params.Category),
		Brand:    strings.TrimSpace(params.Brand),
	}

	ranges, err := parseRanges(params.Ranges)
	if err != nil {
		return nil, err
	}
	spec.Ranges = ranges

	if spec.Sort, err = ParseSort(params.Sort, ProductSortFields); err != nil {
		return nil, err
	}

	spec.Page, spec.Limit = ParsePaging(params.Page, params.Limit, limits)
	spec.Skip = (spec.Page - 1) * spec.Limit
	return spec, nil
}

// Tokenize splits free text on whitespace.
func Tokenize(q string) []string {
	return strings.Fields(q)
}

func parseRanges(raw map[string]map[string]string) ([]RangeCond, error) {
	var conds []RangeCond
	for field, bounds := range raw {
		if !isRangeField(field) {
			return nil, fieldErr(ErrInvalidFilterValue, field, "does not accept range bounds")
		}
		for op, v := range bounds {
			switch op {
			case OpGt, OpGte, OpLt, OpLte:
			default:
				return nil, fieldErr(ErrInvalidFilterValue, field+"["+op+"]", "is not a supported bound")
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || !finite(n) {
				return nil, fieldErr(ErrInvalidFilterValue, field+"["+op+"]", "must be a number, got %q", v)
			}
			conds = append(conds, RangeCond{Field: field, Op: op, Value: n})
		}
	}
	sort.Slice(conds, func(i, j int) bool {
		if conds[i].Field != conds[j].Field {
			return conds[i].Field < conds[j].Field
		}
		return conds[i].Op < conds[j].Op
	})
	return conds, nil
}

func isRangeField(field string) bool {
	for _, f := range RangeFields {
		if f == field {
			return true
		}
	}
	return false
}

// ParseSort splits key on its last "-" into field and direction. Only an
// exact "desc" sorts descending. An empty key means insertion order and
// returns nil. allowed maps accepted field names to stored names.
func ParseSort(key string, allowed map[string]string) (*SortSpec, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	field, dir := key, ""
	if i := strings.LastIndex(key, "-"); i >= 0 {
		field, dir = key[:i], key[i+1:]
	}
	stored, ok := allowed[field]
	if !ok {
		return nil, fieldErr(ErrInvalidFilterValue, "sort", "cannot order by %q", field)
	}
	return &SortSpec{Field: stored, Desc: dir == "desc"}, nil
}

// ParsePaging resolves a 1-based page and a clamped page size. Both take
// the absolute value of their input; zero or unparsable values fall back
// to page 1 and the default size.
// Pages too large to address are clamped to the last addressable page.
func ParsePaging(rawPage, rawLimit string, limits Limits) (page, limit int) {
	page = absInt(rawPage)
	if page == 0 {
		page = 1
	}
	limit = absInt(rawLimit)
	if limit == 0 {
		limit = limits.Default
	}
	if limits.Max > 0 && limit > limits.Max {
		limit = limits.Max
	}
	// Keep (page-1)*limit representable so the skip is never negative.
	if limit > 0 && page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return page, limit
}

func absInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	if n == math.MinInt {
		return math.MaxInt
	}
	if n < 0 {
		n = -n
	}
	return n
}

// TotalPages is ceil(count / limit).
func (f *FilterSpec) TotalPages(count int64) int {
	return TotalPages(count, f.Limit)
}

// TotalPages is ceil(count / limit), or 0 when limit is not positive.
func TotalPages(count int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(limit)))
}

// Match reports whether p satisfies the filter. It is the in-memory
// counterpart of the storage translation.
func (f *FilterSpec) Match(p *models.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if len(f.Tokens) > 0 && !MatchesText(p, f.Tokens) {
		return false
	}
	for _, c := range f.Ranges {
		if !c.holds(rangeValue(p, c.Field)) {
			return false
		}
	}
	return true
}

// MatchesText reports whether every token appears, case-insensitively, in
// the product title or together in a single size title.
func MatchesText(p *models.Product, tokens []string) bool {
	if containsAll(p.Title, tokens) {
		return true
	}
	for _, s := range p.Sizes {
		if containsAll(s.Title, tokens) {
			return true
		}
	}
	return false
}

func containsAll(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, t := range tokens {
		if !strings.Contains(lower, strings.ToLower(t)) {
			return false
		}
	}
	return true
}

func (c RangeCond) holds(v float64) bool {
	switch c.Op {
	case OpGt:
		return v > c.Value
	case OpGte:
		return v >= c.Value
	case OpLt:
		return v < c.Value
	case OpLte:
		return v <= c.Value
	}
	return false
}

func rangeValue(p *models.Product, field string) float64 {
	switch field {
	case "price":
		return p.Price
	case "rating":
		return p.Rating
	case "ratingCount":
		return float64(p.RatingCount)
	case "discountPercent":
		return float64(p.DiscountPercent)
	}
	return 0
}

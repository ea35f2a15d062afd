package catalog

import (
	"math"
)

// DiscountPercent derives the discount of price against reference as
// ceil((ref - price) / ref * 100). A nil reference means no discount.
// Markups produce negative values and are returned as-is.
func DiscountPercent(price float64, reference *float64) (int, error) {
	return discountFor("", price, reference)
}

// discountFor is DiscountPercent with failures attributed to the price or
// mrp field under prefix (e.g. "sizes[2].").
func discountFor(prefix string, price float64, reference *float64) (int, error) {
	if !finite(price) || price <= 0 {
		return 0, fieldErr(ErrInvalidPrice, prefix+"price", "must be greater than 0")
	}
	ref := price
	if reference != nil {
		ref = *reference
	}
	if !finite(ref) || ref <= 0 {
		return 0, fieldErr(ErrInvalidPrice, prefix+"mrp", "must be greater than 0")
	}

	pct := (ref - price) * 100 / ref
	// Round to 6 places first so 93 against 100 yields 7, not 8.
	pct = math.Round(pct*1e6) / 1e6
	return int(math.Ceil(pct)), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package catalog

import (
	"strings"

	"github.com/GTDGit/catalog_api/internal/models"
)

// SelectBestVariant returns the index of the size whose title contains the
// most query tokens. Ties keep the earliest (cheapest) size and a product
// with no matching size yields 0.
func SelectBestVariant(p *models.Product, query string) int {
	tokens := strings.Fields(strings.ToLower(query))
	best, bestScore := 0, 0
	for i, s := range p.Sizes {
		title := strings.ToLower(s.Title)
		score := 0
		for _, t := range tokens {
			if strings.Contains(title, t) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// Rank annotates each sized product with its best matching size for query.
// Stored data is not changed; only SelectedSizeIndex is set.
func Rank(products []models.Product, query string) {
	if strings.TrimSpace(query) == "" {
		return
	}
	for i := range products {
		if len(products[i].Sizes) == 0 {
			continue
		}
		products[i].SelectedSizeIndex = SelectBestVariant(&products[i], query)
	}
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GTDGit/catalog_api/internal/models"
)

func sizedProduct(titles ...string) models.Product {
	p := models.Product{HasSize: true}
	for _, t := range titles {
		p.Sizes = append(p.Sizes, models.SizeEntry{Name: t, Title: t})
	}
	return p
}

func TestSelectBestVariant(t *testing.T) {
	p := sizedProduct("64GB", "128GB", "256GB")

	tests := []struct {
		query string
		want  int
	}{
		{query: "128gb version", want: 1},
		{query: "256GB", want: 2},
		{query: "no match here", want: 0},
		{query: "", want: 0},
		// "gb" hits every size equally; the cheapest wins the tie.
		{query: "gb", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectBestVariant(&p, tt.query))
		})
	}
}

func TestSelectBestVariantPrefersHigherScore(t *testing.T) {
	p := sizedProduct("Phone Black 64GB", "Phone Blue 64GB", "Phone Blue 128GB")
	assert.Equal(t, 2, SelectBestVariant(&p, "blue 128gb"))
	assert.Equal(t, 1, SelectBestVariant(&p, "BLUE"))
}

func TestRank(t *testing.T) {
	products := []models.Product{
		sizedProduct("64GB", "128GB"),
		{Title: "Flat"},
	}

	Rank(products, "128GB")
	assert.Equal(t, 1, products[0].SelectedSizeIndex)
	assert.Equal(t, 0, products[1].SelectedSizeIndex)

	products[0].SelectedSizeIndex = 1
	Rank(products, "   ")
	assert.Equal(t, 1, products[0].SelectedSizeIndex, "blank queries leave the hint alone")
}

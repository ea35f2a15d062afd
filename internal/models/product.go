package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VariantShape enumerates the four mutually exclusive product shapes.
type VariantShape string

const (
	ShapeFlat         VariantShape = "flat"
	ShapeSized        VariantShape = "sized"
	ShapeColored      VariantShape = "colored"
	ShapeSizedColored VariantShape = "sized_colored"
)

// ShapeOf maps the hasColor/hasSize flag pair to its shape.
func ShapeOf(hasColor, hasSize bool) VariantShape {
	switch {
	case hasColor && hasSize:
		return ShapeSizedColored
	case hasColor:
		return ShapeColored
	case hasSize:
		return ShapeSized
	default:
		return ShapeFlat
	}
}

// Product is the catalog document stored in the products collection.
// Price, MRP, DiscountPercent and Stock always mirror the default variant
// for sized and colored shapes so list views can render without unpacking.
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   string             `bson:"groupId,omitempty" json:"groupId,omitempty"`
	Title     string             `bson:"title" json:"title"`
	Highlight []string           `bson:"highlight" json:"highlight"`
	Category  string             `bson:"category" json:"category"`
	Brand     string             `bson:"brand" json:"brand"`
	Images    []string           `bson:"images" json:"images"`

	HasColor bool `bson:"hasColor" json:"hasColor"`
	HasSize  bool `bson:"hasSize" json:"hasSize"`

	Price           float64  `bson:"price" json:"price"`
	MRP             *float64 `bson:"mrp,omitempty" json:"mrp,omitempty"`
	DiscountPercent int      `bson:"discountPercent" json:"discountPercent"`
	Stock           int      `bson:"stock" json:"stock"`

	SizeKind string       `bson:"sizeKind,omitempty" json:"sizeKind,omitempty"`
	Sizes    []SizeEntry  `bson:"sizes,omitempty" json:"sizes,omitempty"`
	Colors   []ColorEntry `bson:"colors,omitempty" json:"colors,omitempty"`

	// SelectedSizeIndex is a search display hint and is never persisted.
	SelectedSizeIndex int `bson:"-" json:"selectedSizeIndex"`

	Rating      float64 `bson:"rating" json:"rating"`
	RatingCount int     `bson:"ratingCount" json:"ratingCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Shape returns the variant shape of the product.
func (p *Product) Shape() VariantShape {
	return ShapeOf(p.HasColor, p.HasSize)
}

// MediaRefs returns every external media reference held by the product.
func (p *Product) MediaRefs() []string {
	refs := make([]string, 0, len(p.Images)+len(p.Colors))
	refs = append(refs, p.Images...)
	for _, c := range p.Colors {
		if c.Image != "" {
			refs = append(refs, c.Image)
		}
	}
	return refs
}

// SizeEntry is one size variant. ColorStock is only set on sized_colored products.
type SizeEntry struct {
	Name            string       `bson:"name" json:"name"`
	Title           string       `bson:"title" json:"title"`
	Price           float64      `bson:"price" json:"price"`
	MRP             *float64     `bson:"mrp,omitempty" json:"mrp,omitempty"`
	DiscountPercent int          `bson:"discountPercent" json:"discountPercent"`
	Stock           int          `bson:"stock" json:"stock"`
	ColorStock      []ColorStock `bson:"colorStock,omitempty" json:"colorStock,omitempty"`
}

// ColorEntry is one color option. Pricing fields are nil when the product also has sizes.
type ColorEntry struct {
	ConnectionID    string   `bson:"connectionId" json:"connectionId"`
	Name            string   `bson:"name" json:"name"`
	Image           string   `bson:"image,omitempty" json:"image,omitempty"`
	Price           *float64 `bson:"price,omitempty" json:"price,omitempty"`
	MRP             *float64 `bson:"mrp,omitempty" json:"mrp,omitempty"`
	DiscountPercent *int     `bson:"discountPercent,omitempty" json:"discountPercent,omitempty"`
	Stock           *int     `bson:"stock,omitempty" json:"stock,omitempty"`
}

// ColorStock is the per-color stock breakdown of a size entry.
type ColorStock struct {
	ConnectionID    string   `bson:"connectionId" json:"connectionId"`
	Stock           int      `bson:"stock" json:"stock"`
	Price           *float64 `bson:"price,omitempty" json:"price,omitempty"`
	MRP             *float64 `bson:"mrp,omitempty" json:"mrp,omitempty"`
	DiscountPercent *int     `bson:"discountPercent,omitempty" json:"discountPercent,omitempty"`
}

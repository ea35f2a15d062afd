package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/GTDGit/catalog_api/internal/models"
)

// Input is a decoded product payload. The concrete type is one of
// *FlatInput, *SizedInput, *ColoredInput or *SizedColoredInput.
type Input interface {
	Shape() models.VariantShape
	common() *Common
	build(policy Policy) (*models.Product, error)
}

// Common holds the descriptive fields shared by every shape. Title is
// required on flat and colored products; sized products take it from
// their cheapest size.
type Common struct {
	HasColor  bool     `json:"hasColor"`
	HasSize   bool     `json:"hasSize"`
	Title     string   `json:"title"`
	Highlight []string `json:"highlight" validate:"required,min=1,dive,required"`
	Category  string   `json:"category" validate:"required"`
	Brand     string   `json:"brand" validate:"required"`
	Images    []string `json:"images" validate:"dive,required"`
}

// FlatInput is a product without color or size options.
type FlatInput struct {
	Common
	Price *float64 `json:"price" validate:"required,gt=0"`
	MRP   *float64 `json:"mrp" validate:"omitempty,gt=0"`
	Stock *int     `json:"stock" validate:"required,gte=0"`
}

// SizedInput is a product with size options only.
type SizedInput struct {
	Common
	SizeKind string      `json:"sizeKind"`
	Sizes    []SizeInput `json:"sizes" validate:"required,min=1,dive"`
}

// ColoredInput is one member of a color group without size options.
type ColoredInput struct {
	Common
	GroupID string       `json:"groupId"`
	Colors  []ColorInput `json:"colors" validate:"required,min=1,dive"`
}

// SizedColoredInput is a product with both color and size options.
// Pricing lives on the sizes; colors only carry identity and image.
type SizedColoredInput struct {
	Common
	GroupID  string          `json:"groupId"`
	SizeKind string          `json:"sizeKind"`
	Colors   []ColorRefInput `json:"colors" validate:"required,min=1,dive"`
	Sizes    []SizeInput     `json:"sizes" validate:"required,min=1,dive"`
}

// SizeInput is one size entry. Stock is set on sized products;
// ColorStock replaces it on sized+colored products.
type SizeInput struct {
	Name       string            `json:"name" validate:"required"`
	Title      string            `json:"title" validate:"required"`
	Price      *float64          `json:"price" validate:"required,gt=0"`
	MRP        *float64          `json:"mrp" validate:"omitempty,gt=0"`
	Stock      *int              `json:"stock" validate:"omitempty,gte=0"`
	ColorStock []ColorStockInput `json:"colorStock" validate:"dive"`
}

// ColorStockInput is the stock of one color within a size.
type ColorStockInput struct {
	ConnectionID string   `json:"connectionId" validate:"required"`
	Stock        *int     `json:"stock" validate:"required,gte=0"`
	Price        *float64 `json:"price" validate:"omitempty,gt=0"`
	MRP          *float64 `json:"mrp" validate:"omitempty,gt=0"`
}

// ColorInput is a fully priced color entry of a color-only product.
type ColorInput struct {
	ConnectionID string   `json:"connectionId"`
	Name         string   `json:"name" validate:"required"`
	Image        string   `json:"image"`
	Price        *float64 `json:"price" validate:"required,gt=0"`
	MRP          *float64 `json:"mrp" validate:"omitempty,gt=0"`
	Stock        *int     `json:"stock" validate:"required,gte=0"`
}

// ColorRefInput is an unpriced color entry of a sized+colored product.
type ColorRefInput struct {
	ConnectionID string `json:"connectionId" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Image        string `json:"image"`
}

func (c *Common) common() *Common { return c }

func (*FlatInput) Shape() models.VariantShape         { return models.ShapeFlat }
func (*SizedInput) Shape() models.VariantShape        { return models.ShapeSized }
func (*ColoredInput) Shape() models.VariantShape      { return models.ShapeColored }
func (*SizedColoredInput) Shape() models.VariantShape { return models.ShapeSizedColored }

// DecodeInput reads the hasColor/hasSize flags from raw and strictly decodes
// the payload into the matching shape. Unknown fields are rejected.
func DecodeInput(raw []byte) (Input, error) {
	var flags struct {
		HasColor bool `json:"hasColor"`
		HasSize  bool `json:"hasSize"`
	}
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil, &Error{Kind: ErrInvalidPayload, Detail: err.Error()}
	}

	var in Input
	switch models.ShapeOf(flags.HasColor, flags.HasSize) {
	case models.ShapeSized:
		in = &SizedInput{}
	case models.ShapeColored:
		in = &ColoredInput{}
	case models.ShapeSizedColored:
		in = &SizedColoredInput{}
	default:
		in = &FlatInput{}
	}

	if err := decodeStrict(raw, in); err != nil {
		return nil, err
	}
	return in, nil
}

func decodeStrict(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &Error{Kind: ErrInvalidPayload, Detail: err.Error()}
	}
	return nil
}

func (c *Common) clean() {
	c.Title = strings.TrimSpace(c.Title)
	c.Category = strings.TrimSpace(c.Category)
	c.Brand = strings.TrimSpace(c.Brand)
	for i := range c.Highlight {
		c.Highlight[i] = strings.TrimSpace(c.Highlight[i])
	}
	for i := range c.Images {
		c.Images[i] = strings.TrimSpace(c.Images[i])
	}
}

func (c *Common) base() *models.Product {
	return &models.Product{
		Title:     c.Title,
		Highlight: append([]string(nil), c.Highlight...),
		Category:  c.Category,
		Brand:     c.Brand,
		Images:    append([]string{}, c.Images...),
		HasColor:  c.HasColor,
		HasSize:   c.HasSize,
	}
}

// ImageRefs lists the media references carried by the payload, so callers
// can release them when the write fails.
func ImageRefs(in Input) []string {
	refs := append([]string(nil), in.common().Images...)
	switch v := in.(type) {
	case *ColoredInput:
		for _, c := range v.Colors {
			if c.Image != "" {
				refs = append(refs, c.Image)
			}
		}
	case *SizedColoredInput:
		for _, c := range v.Colors {
			if c.Image != "" {
				refs = append(refs, c.Image)
			}
		}
	}
	return refs
}

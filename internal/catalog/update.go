package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GTDGit/catalog_api/internal/models"
)

// UpdatePatch is a partial product update. Nil fields are left untouched.
// Colors is decoded against the stored product's shape.
type UpdatePatch struct {
	Title     *string         `json:"title"`
	Highlight []string        `json:"highlight"`
	Category  *string         `json:"category"`
	Brand     *string         `json:"brand"`
	Images    []string        `json:"images"`
	Price     *float64        `json:"price"`
	MRP       *float64        `json:"mrp"`
	Stock     *int            `json:"stock"`
	SizeKind  *string         `json:"sizeKind"`
	Sizes     []SizeInput     `json:"sizes"`
	Colors    json.RawMessage `json:"colors"`
}

// ColorChange is a renamed or re-imaged color that must be copied to every
// sibling sharing the product's group id.
type ColorChange struct {
	ConnectionID string
	Name         string
	Image        string
}

type sizesPatch struct {
	Sizes []SizeInput `json:"sizes" validate:"required,min=1,dive"`
}

type colorsPatch struct {
	Colors []ColorInput `json:"colors" validate:"required,min=1,dive"`
}

type colorRefsPatch struct {
	Colors []ColorRefInput `json:"colors" validate:"required,min=1,dive"`
}

// DecodePatch strictly decodes an update payload. Shape flags and derived
// fields such as discountPercent are rejected as unknown.
func DecodePatch(raw []byte) (*UpdatePatch, error) {
	var p UpdatePatch
	if err := decodeStrict(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PatchImageRefs lists the media references a patch carries, including
// colors[].image. Colors is read leniently so refs survive a patch that
// fails validation.
func PatchImageRefs(p *UpdatePatch) []string {
	refs := append([]string(nil), p.Images...)
	if len(p.Colors) == 0 {
		return refs
	}
	var colors []struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(p.Colors, &colors); err != nil {
		return refs
	}
	for _, c := range colors {
		if img := strings.TrimSpace(c.Image); img != "" {
			refs = append(refs, img)
		}
	}
	return refs
}

// ApplyUpdate returns a copy of existing with patch applied, re-deriving
// discounts, size order and the parent's mirrored fields exactly as
// Normalize does. existing is not modified.
func ApplyUpdate(existing *models.Product, patch *UpdatePatch, policy Policy) (*models.Product, []ColorChange, error) {
	p := *existing
	shape := p.Shape()

	if err := applyDescriptive(&p, patch, shape); err != nil {
		return nil, nil, err
	}

	if shape == models.ShapeFlat {
		if err := applyFlatPricing(&p, patch); err != nil {
			return nil, nil, err
		}
		return &p, nil, nil
	}

	switch {
	case patch.Price != nil:
		return nil, nil, fieldErr(ErrInvalidPayload, "price", "is derived from variants on %s products", shape)
	case patch.MRP != nil:
		return nil, nil, fieldErr(ErrInvalidPayload, "mrp", "is derived from variants on %s products", shape)
	case patch.Stock != nil:
		return nil, nil, fieldErr(ErrInvalidPayload, "stock", "is derived from variants on %s products", shape)
	}

	if patch.SizeKind != nil {
		if !p.HasSize {
			return nil, nil, fieldErr(ErrInvalidPayload, "sizeKind", "is only allowed on products with sizes")
		}
		kind, err := checkSizeKind(strings.TrimSpace(*patch.SizeKind))
		if err != nil {
			return nil, nil, err
		}
		p.SizeKind = kind
	}
	if patch.Sizes != nil && !p.HasSize {
		return nil, nil, fieldErr(ErrInvalidPayload, "sizes", "is only allowed on products with sizes")
	}

	var changes []ColorChange
	switch shape {
	case models.ShapeSized:
		if patch.Colors != nil {
			return nil, nil, fieldErr(ErrInvalidPayload, "colors", "is only allowed on products with colors")
		}
		if patch.Sizes != nil {
			sizes, err := patchSizes(patch.Sizes, nil)
			if err != nil {
				return nil, nil, err
			}
			p.Sizes = sizes
			mirrorSize(&p)
		}

	case models.ShapeColored:
		if patch.Colors != nil {
			var cp colorsPatch
			if err := decodeColors(patch.Colors, &cp); err != nil {
				return nil, nil, err
			}
			trimColors(cp.Colors)
			if err := checkStruct(&cp); err != nil {
				return nil, nil, err
			}
			// Siblings are matched by connection id, so a fresh one would
			// never propagate.
			for i, c := range cp.Colors {
				if c.ConnectionID == "" {
					return nil, nil, fieldErr(ErrMissingRequiredField, fmt.Sprintf("colors[%d].connectionId", i), "is required")
				}
			}
			colors, err := normalizeColors(cp.Colors, policy)
			if err != nil {
				return nil, nil, err
			}
			changes = diffColors(existing.Colors, colors)
			p.Colors = colors
			mirrorColor(&p)
		}

	case models.ShapeSizedColored:
		colors := p.Colors
		if patch.Colors != nil {
			var cp colorRefsPatch
			if err := decodeColors(patch.Colors, &cp); err != nil {
				return nil, nil, err
			}
			trimColorRefs(cp.Colors)
			if err := checkStruct(&cp); err != nil {
				return nil, nil, err
			}
			var err error
			if colors, err = normalizeColorRefs(cp.Colors, policy); err != nil {
				return nil, nil, err
			}
			changes = diffColors(existing.Colors, colors)
		}
		if patch.Sizes != nil || patch.Colors != nil {
			entries := patch.Sizes
			if entries == nil {
				entries = sizeInputsOf(p.Sizes)
			}
			sizes, err := patchSizes(entries, connectionIDs(colors))
			if err != nil {
				return nil, nil, err
			}
			p.Colors = colors
			p.Sizes = sizes
			mirrorSize(&p)
		}
	}

	return &p, changes, nil
}

func applyDescriptive(p *models.Product, patch *UpdatePatch, shape models.VariantShape) error {
	if patch.Title != nil {
		if p.HasSize {
			return fieldErr(ErrInvalidPayload, "title", "is taken from the cheapest size on %s products", shape)
		}
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return fieldErr(ErrMissingRequiredField, "title", "is required")
		}
		p.Title = title
	}
	if patch.Highlight != nil {
		hl := make([]string, 0, len(patch.Highlight))
		for _, h := range patch.Highlight {
			if h = strings.TrimSpace(h); h == "" {
				return fieldErr(ErrMissingRequiredField, "highlight", "entries must not be empty")
			}
			hl = append(hl, h)
		}
		if len(hl) == 0 {
			return fieldErr(ErrMissingRequiredField, "highlight", "must not be empty")
		}
		p.Highlight = hl
	}
	if patch.Category != nil {
		v := strings.TrimSpace(*patch.Category)
		if v == "" {
			return fieldErr(ErrMissingRequiredField, "category", "is required")
		}
		p.Category = v
	}
	if patch.Brand != nil {
		v := strings.TrimSpace(*patch.Brand)
		if v == "" {
			return fieldErr(ErrMissingRequiredField, "brand", "is required")
		}
		p.Brand = v
	}
	if patch.Images != nil {
		images := make([]string, 0, len(patch.Images))
		for _, img := range patch.Images {
			if img = strings.TrimSpace(img); img == "" {
				return fieldErr(ErrMissingRequiredField, "images", "entries must not be empty")
			}
			images = append(images, img)
		}
		p.Images = images
	}
	return nil
}

func applyFlatPricing(p *models.Product, patch *UpdatePatch) error {
	switch {
	case patch.SizeKind != nil || patch.Sizes != nil:
		return fieldErr(ErrInvalidPayload, "sizes", "is not allowed on flat products")
	case patch.Colors != nil:
		return fieldErr(ErrInvalidPayload, "colors", "is not allowed on flat products")
	}

	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return fieldErr(ErrInvalidStock, "stock", "must not be negative")
		}
		p.Stock = *patch.Stock
	}
	if patch.Price == nil && patch.MRP == nil {
		return nil
	}

	price := p.Price
	if patch.Price != nil {
		price = *patch.Price
	}
	mrp := p.MRP
	if patch.MRP != nil {
		mrp = cloneFloat(patch.MRP)
	}
	d, err := discountFor("", price, mrp)
	if err != nil {
		return err
	}
	p.Price = price
	p.MRP = mrp
	p.DiscountPercent = d
	return nil
}

func patchSizes(entries []SizeInput, colorIDs []string) ([]models.SizeEntry, error) {
	sp := sizesPatch{Sizes: entries}
	trimSizes(sp.Sizes)
	if err := checkStruct(&sp); err != nil {
		return nil, err
	}
	return normalizeSizes(sp.Sizes, colorIDs)
}

func decodeColors(raw json.RawMessage, dst any) error {
	wrapped := make([]byte, 0, len(raw)+12)
	wrapped = append(wrapped, `{"colors":`...)
	wrapped = append(wrapped, raw...)
	wrapped = append(wrapped, '}')
	return decodeStrict(wrapped, dst)
}

// sizeInputsOf rebuilds inputs from stored sizes so they can be checked
// against a new color list.
func sizeInputsOf(sizes []models.SizeEntry) []SizeInput {
	out := make([]SizeInput, 0, len(sizes))
	for _, s := range sizes {
		price := s.Price
		in := SizeInput{
			Name:  s.Name,
			Title: s.Title,
			Price: &price,
			MRP:   cloneFloat(s.MRP),
		}
		for _, cs := range s.ColorStock {
			stock := cs.Stock
			in.ColorStock = append(in.ColorStock, ColorStockInput{
				ConnectionID: cs.ConnectionID,
				Stock:        &stock,
				Price:        cloneFloat(cs.Price),
				MRP:          cloneFloat(cs.MRP),
			})
		}
		out = append(out, in)
	}
	return out
}

func diffColors(before, after []models.ColorEntry) []ColorChange {
	prev := make(map[string]models.ColorEntry, len(before))
	for _, c := range before {
		prev[c.ConnectionID] = c
	}
	var changes []ColorChange
	for _, c := range after {
		old, ok := prev[c.ConnectionID]
		if !ok {
			continue
		}
		if old.Name != c.Name || old.Image != c.Image {
			changes = append(changes, ColorChange{ConnectionID: c.ConnectionID, Name: c.Name, Image: c.Image})
		}
	}
	return changes
}

package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/GTDGit/catalog_api/internal/models"
)

// SizeKinds are the accepted values of a product's sizeKind.
var SizeKinds = []string{"ram", "ml", "gram", "storage"}

// Policy carries the normalization rules that vary per deployment.
type Policy struct {
	// RequireColorImage makes every color entry carry its own image.
	RequireColorImage bool
}

// DefaultPolicy requires color images.
func DefaultPolicy() Policy {
	return Policy{RequireColorImage: true}
}

// Normalize validates in against its shape and returns the storage-ready
// product. It never persists and never releases media on failure; use
// ImageRefs to find what the caller staged.
func Normalize(in Input, policy Policy) (*models.Product, error) {
	if in == nil {
		return nil, &Error{Kind: ErrInvalidPayload, Detail: "empty payload"}
	}
	trimInput(in)
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	return in.build(policy)
}

func (in *FlatInput) build(Policy) (*models.Product, error) {
	if in.Title == "" {
		return nil, fieldErr(ErrMissingRequiredField, "title", "is required")
	}
	d, err := discountFor("", *in.Price, in.MRP)
	if err != nil {
		return nil, err
	}

	p := in.base()
	p.Price = *in.Price
	p.MRP = cloneFloat(in.MRP)
	p.DiscountPercent = d
	p.Stock = *in.Stock
	return p, nil
}

func (in *SizedInput) build(Policy) (*models.Product, error) {
	kind, err := checkSizeKind(in.SizeKind)
	if err != nil {
		return nil, err
	}
	sizes, err := normalizeSizes(in.Sizes, nil)
	if err != nil {
		return nil, err
	}

	p := in.base()
	p.SizeKind = kind
	p.Sizes = sizes
	mirrorSize(p)
	return p, nil
}

func (in *ColoredInput) build(policy Policy) (*models.Product, error) {
	if in.Title == "" {
		return nil, fieldErr(ErrMissingRequiredField, "title", "is required")
	}
	colors, err := normalizeColors(in.Colors, policy)
	if err != nil {
		return nil, err
	}

	p := in.base()
	p.GroupID = groupID(in.GroupID)
	p.Colors = colors
	mirrorColor(p)
	return p, nil
}

func (in *SizedColoredInput) build(policy Policy) (*models.Product, error) {
	kind, err := checkSizeKind(in.SizeKind)
	if err != nil {
		return nil, err
	}
	colors, err := normalizeColorRefs(in.Colors, policy)
	if err != nil {
		return nil, err
	}
	sizes, err := normalizeSizes(in.Sizes, connectionIDs(colors))
	if err != nil {
		return nil, err
	}

	p := in.base()
	p.GroupID = groupID(in.GroupID)
	p.SizeKind = kind
	p.Colors = colors
	p.Sizes = sizes
	mirrorSize(p)
	return p, nil
}

// normalizeSizes validates, prices and sorts size entries. colorIDs is nil
// for sized-only products; otherwise every entry must break its stock down
// over exactly those colors.
func normalizeSizes(entries []SizeInput, colorIDs []string) ([]models.SizeEntry, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]models.SizeEntry, 0, len(entries))

	for i, e := range entries {
		prefix := fmt.Sprintf("sizes[%d].", i)
		if e.Name == "" {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"name", "is required")
		}
		if e.Title == "" {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"title", "is required")
		}
		if e.Price == nil {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"price", "is required")
		}
		key := strings.ToLower(e.Name)
		if _, dup := seen[key]; dup {
			return nil, fieldErr(ErrInvalidSizeList, prefix+"name", "duplicates size %q", e.Name)
		}
		seen[key] = struct{}{}

		d, err := discountFor(prefix, *e.Price, e.MRP)
		if err != nil {
			return nil, err
		}
		entry := models.SizeEntry{
			Name:            e.Name,
			Title:           e.Title,
			Price:           *e.Price,
			MRP:             cloneFloat(e.MRP),
			DiscountPercent: d,
		}

		if colorIDs == nil {
			if len(e.ColorStock) > 0 {
				return nil, fieldErr(ErrInvalidSizeList, prefix+"colorStock", "is only allowed on products with colors")
			}
			if e.Stock == nil {
				return nil, fieldErr(ErrMissingRequiredField, prefix+"stock", "is required")
			}
			if *e.Stock < 0 {
				return nil, fieldErr(ErrInvalidStock, prefix+"stock", "must not be negative")
			}
			entry.Stock = *e.Stock
		} else {
			if e.Stock != nil {
				return nil, fieldErr(ErrInvalidSizeList, prefix+"stock", "is derived from colorStock")
			}
			breakdown, total, err := normalizeColorStock(prefix, e.ColorStock, colorIDs)
			if err != nil {
				return nil, err
			}
			entry.ColorStock = breakdown
			entry.Stock = total
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

// normalizeColorStock requires exactly one breakdown entry per declared color.
func normalizeColorStock(prefix string, entries []ColorStockInput, colorIDs []string) ([]models.ColorStock, int, error) {
	covered := make(map[string]bool, len(colorIDs))
	for _, id := range colorIDs {
		covered[id] = false
	}

	out := make([]models.ColorStock, 0, len(entries))
	total := 0
	for j, cs := range entries {
		field := fmt.Sprintf("%scolorStock[%d]", prefix, j)
		done, declared := covered[cs.ConnectionID]
		if !declared {
			return nil, 0, fieldErr(ErrColorSizeMismatch, field+".connectionId", "references undeclared color %q", cs.ConnectionID)
		}
		if done {
			return nil, 0, fieldErr(ErrColorSizeMismatch, field+".connectionId", "duplicates color %q", cs.ConnectionID)
		}
		covered[cs.ConnectionID] = true

		if cs.Stock == nil {
			return nil, 0, fieldErr(ErrMissingRequiredField, field+".stock", "is required")
		}
		if *cs.Stock < 0 {
			return nil, 0, fieldErr(ErrInvalidStock, field+".stock", "must not be negative")
		}
		item := models.ColorStock{ConnectionID: cs.ConnectionID, Stock: *cs.Stock}
		switch {
		case cs.Price != nil:
			d, err := discountFor(field+".", *cs.Price, cs.MRP)
			if err != nil {
				return nil, 0, err
			}
			item.Price = cloneFloat(cs.Price)
			item.MRP = cloneFloat(cs.MRP)
			item.DiscountPercent = &d
		case cs.MRP != nil:
			return nil, 0, fieldErr(ErrInvalidPrice, field+".price", "is required when mrp is set")
		}
		total += item.Stock
		out = append(out, item)
	}

	for _, id := range colorIDs {
		if !covered[id] {
			return nil, 0, fieldErr(ErrColorSizeMismatch, prefix+"colorStock", "is missing color %q", id)
		}
	}
	return out, total, nil
}

func normalizeColors(colors []ColorInput, policy Policy) ([]models.ColorEntry, error) {
	seen := make(map[string]struct{}, len(colors))
	out := make([]models.ColorEntry, 0, len(colors))

	for i, c := range colors {
		prefix := fmt.Sprintf("colors[%d].", i)
		if c.Name == "" {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"name", "is required")
		}
		if c.Price == nil || c.Stock == nil {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"price", "and stock are required")
		}
		id := c.ConnectionID
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, fieldErr(ErrInvalidColorList, prefix+"connectionId", "duplicates %q", id)
		}
		seen[id] = struct{}{}
		if policy.RequireColorImage && c.Image == "" {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"image", "is required")
		}
		if *c.Stock < 0 {
			return nil, fieldErr(ErrInvalidStock, prefix+"stock", "must not be negative")
		}

		d, err := discountFor(prefix, *c.Price, c.MRP)
		if err != nil {
			return nil, err
		}
		stock := *c.Stock
		out = append(out, models.ColorEntry{
			ConnectionID:    id,
			Name:            c.Name,
			Image:           c.Image,
			Price:           cloneFloat(c.Price),
			MRP:             cloneFloat(c.MRP),
			DiscountPercent: &d,
			Stock:           &stock,
		})
	}
	return out, nil
}

func normalizeColorRefs(colors []ColorRefInput, policy Policy) ([]models.ColorEntry, error) {
	seen := make(map[string]struct{}, len(colors))
	out := make([]models.ColorEntry, 0, len(colors))

	for i, c := range colors {
		prefix := fmt.Sprintf("colors[%d].", i)
		if c.ConnectionID == "" {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"connectionId", "is required")
		}
		if c.Name == "" {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"name", "is required")
		}
		if _, dup := seen[c.ConnectionID]; dup {
			return nil, fieldErr(ErrInvalidColorList, prefix+"connectionId", "duplicates %q", c.ConnectionID)
		}
		seen[c.ConnectionID] = struct{}{}
		if policy.RequireColorImage && c.Image == "" {
			return nil, fieldErr(ErrMissingRequiredField, prefix+"image", "is required")
		}
		out = append(out, models.ColorEntry{
			ConnectionID: c.ConnectionID,
			Name:         c.Name,
			Image:        c.Image,
		})
	}
	return out, nil
}

// mirrorSize copies the cheapest size onto the parent's display fields.
func mirrorSize(p *models.Product) {
	s := p.Sizes[0]
	p.Title = s.Title
	p.Price = s.Price
	p.MRP = cloneFloat(s.MRP)
	p.DiscountPercent = s.DiscountPercent
	p.Stock = s.Stock
}

// mirrorColor copies the default (first) color onto the parent's price fields.
func mirrorColor(p *models.Product) {
	c := p.Colors[0]
	p.Price = *c.Price
	p.MRP = cloneFloat(c.MRP)
	p.DiscountPercent = *c.DiscountPercent
	p.Stock = *c.Stock
}

func checkSizeKind(kind string) (string, error) {
	if kind == "" {
		return "", nil
	}
	k := strings.ToLower(kind)
	for _, allowed := range SizeKinds {
		if k == allowed {
			return k, nil
		}
	}
	return "", fieldErr(ErrInvalidSizeList, "sizeKind", "must be one of %s", strings.Join(SizeKinds, ", "))
}

func groupID(supplied string) string {
	if supplied != "" {
		return supplied
	}
	return uuid.NewString()
}

func connectionIDs(colors []models.ColorEntry) []string {
	ids := make([]string, 0, len(colors))
	for _, c := range colors {
		ids = append(ids, c.ConnectionID)
	}
	return ids
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// trimInput strips surrounding whitespace from every string of the payload.
func trimInput(in Input) {
	in.common().clean()
	switch v := in.(type) {
	case *SizedInput:
		v.SizeKind = strings.TrimSpace(v.SizeKind)
		trimSizes(v.Sizes)
	case *ColoredInput:
		v.GroupID = strings.TrimSpace(v.GroupID)
		trimColors(v.Colors)
	case *SizedColoredInput:
		v.GroupID = strings.TrimSpace(v.GroupID)
		v.SizeKind = strings.TrimSpace(v.SizeKind)
		trimColorRefs(v.Colors)
		trimSizes(v.Sizes)
	}
}

func trimSizes(sizes []SizeInput) {
	for i := range sizes {
		sizes[i].Name = strings.TrimSpace(sizes[i].Name)
		sizes[i].Title = strings.TrimSpace(sizes[i].Title)
		for j := range sizes[i].ColorStock {
			sizes[i].ColorStock[j].ConnectionID = strings.TrimSpace(sizes[i].ColorStock[j].ConnectionID)
		}
	}
}

func trimColors(colors []ColorInput) {
	for i := range colors {
		colors[i].ConnectionID = strings.TrimSpace(colors[i].ConnectionID)
		colors[i].Name = strings.TrimSpace(colors[i].Name)
		colors[i].Image = strings.TrimSpace(colors[i].Image)
	}
}

func trimColorRefs(colors []ColorRefInput) {
	for i := range colors {
		colors[i].ConnectionID = strings.TrimSpace(colors[i].ConnectionID)
		colors[i].Name = strings.TrimSpace(colors[i].Name)
		colors[i].Image = strings.TrimSpace(colors[i].Image)
	}
}

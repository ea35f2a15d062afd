package models

import "time"

// Brand is a product brand label. Names are unique.
type Brand struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Category is a product category label with an optional cover image.
type Category struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Image     *string   `json:"image,omitempty" db:"image"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Coupon is a percentage discount code.
type Coupon struct {
	ID              int        `json:"id" db:"id"`
	Code            string     `json:"code" db:"code"`
	DiscountPercent int        `json:"discountPercent" db:"discount_percent"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// Usable reports whether the coupon can be redeemed at t.
func (c *Coupon) Usable(t time.Time) bool {
	if !c.IsActive {
		return false
	}
	return c.ExpiresAt == nil || t.Before(*c.ExpiresAt)
}

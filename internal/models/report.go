package models

import "time"

// CatalogReport is the aggregate shown on the admin dashboard.
type CatalogReport struct {
	TotalProducts    int64            `json:"totalProducts"`
	OutOfStock       int64            `json:"outOfStock"`
	ByShape          map[string]int64 `json:"byShape"`
	ByCategory       map[string]int64 `json:"byCategory"`
	OrdersByStatus   map[string]int64 `json:"ordersByStatus"`
	DeliveredRevenue float64          `json:"deliveredRevenue"`
	TotalBrands      int              `json:"totalBrands"`
	TotalCategories  int              `json:"totalCategories"`
	GeneratedAt      time.Time        `json:"generatedAt"`
}

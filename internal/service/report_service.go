package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/catalog_api/internal/cache"
	"github.com/GTDGit/catalog_api/internal/models"
)

// ProductStats aggregates the product collection.
type ProductStats interface {
	CountAll(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)
	CountByShape(ctx context.Context) (map[string]int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// OrderStats aggregates the order collection.
type OrderStats interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	DeliveredRevenue(ctx context.Context) (float64, error)
}

// Counter counts rows of a label table.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// ReportCacher memoizes reports by name.
type ReportCacher interface {
	Get(ctx context.Context, name string, dst interface{}) error
	Set(ctx context.Context, name string, report interface{}) error
}

// ReportService builds the admin catalog report.
type ReportService struct {
	products   ProductStats
	orders     OrderStats
	brands     Counter
	categories Counter
	cache      ReportCacher
}

// NewReportService constructs a ReportService.
func NewReportService(products ProductStats, orders OrderStats, brands, categories Counter, cache ReportCacher) *ReportService {
	return &ReportService{products: products, orders: orders, brands: brands, categories: categories, cache: cache}
}

// CatalogReport returns the cached report or computes it, running every
// aggregate in parallel.
func (s *ReportService) CatalogReport(ctx context.Context) (*models.CatalogReport, error) {
	var report models.CatalogReport
	err := s.cache.Get(ctx, ReportCatalog, &report)
	if err == nil {
		return &report, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Msg("Catalog report cache read failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.TotalProducts, err = s.products.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.OutOfStock, err = s.products.CountOutOfStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.ByShape, err = s.products.CountByShape(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.ByCategory, err = s.products.CountByCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.OrdersByStatus, err = s.orders.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.DeliveredRevenue, err = s.orders.DeliveredRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.TotalBrands, err = s.brands.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.TotalCategories, err = s.categories.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build catalog report: %w", err)
	}
	report.GeneratedAt = time.Now().UTC()

	if err := s.cache.Set(ctx, ReportCatalog, &report); err != nil {
		log.Warn().Err(err).Msg("Failed to cache catalog report")
	}
	return &report, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/cache"
	"github.com/GTDGit/catalog_api/internal/catalog"
)

type staticCounter int

func (c staticCounter) Count(context.Context) (int, error) { return int(c), nil }

func TestCatalogReportIsCachedUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.WrapRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	reports := cache.NewReportCache(rc, time.Minute)

	store := &memProducts{}
	products := NewProductService(store, &fakeMedia{}, &fakeQueue{}, reports, catalog.DefaultPolicy(), catalog.DefaultLimits)
	orders := &memOrders{}
	orderSvc := NewOrderService(orders, reports)
	svc := NewReportService(store, orders, staticCounter(2), staticCounter(3), reports)
	ctx := context.Background()

	_, err := products.Create(ctx, []byte(flatJSON("A", 800)))
	require.NoError(t, err)
	_, err = products.Create(ctx, []byte(phoneJSON))
	require.NoError(t, err)
	delivered := validOrder()
	delivered.Status = "Delivered"
	delivered.Total = 150
	_, err = orderSvc.Create(ctx, delivered)
	require.NoError(t, err)
	_, err = orderSvc.Create(ctx, validOrder())
	require.NoError(t, err)

	report, err := svc.CatalogReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.TotalProducts)
	assert.Equal(t, map[string]int64{"flat": 1, "sized": 1}, report.ByShape)
	assert.Equal(t, map[string]int64{"kitchen": 1, "phones": 1}, report.ByCategory)
	assert.Equal(t, 2, report.TotalBrands)
	assert.Equal(t, 3, report.TotalCategories)
	assert.Equal(t, map[string]int64{"Delivered": 1, "Processing": 1}, report.OrdersByStatus)
	assert.Equal(t, 150.0, report.DeliveredRevenue)
	assert.True(t, mr.Exists("report:catalog"))

	// A direct store write bypasses invalidation, so the cached copy is served.
	store.items = append(store.items, store.items[0])
	cached, err := svc.CatalogReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.TotalProducts)

	_, err = products.Create(ctx, []byte(flatJSON("B", 800)))
	require.NoError(t, err)
	assert.False(t, mr.Exists("report:catalog"))

	fresh, err := svc.CatalogReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), fresh.TotalProducts)

	_, err = orderSvc.Create(ctx, validOrder())
	require.NoError(t, err)
	assert.False(t, mr.Exists("report:catalog"))
}

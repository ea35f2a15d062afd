package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/utils"
)

type productFixture struct {
	svc     *ProductService
	store   *memProducts
	media   *fakeMedia
	queue   *fakeQueue
	reports *fakeInvalidator
}

func newProductFixture() *productFixture {
	f := &productFixture{
		store:   &memProducts{},
		media:   &fakeMedia{},
		queue:   &fakeQueue{},
		reports: &fakeInvalidator{},
	}
	f.svc = NewProductService(f.store, f.media, f.queue, f.reports, catalog.DefaultPolicy(), catalog.DefaultLimits)
	return f
}

func flatJSON(title string, price float64, images ...string) string {
	imgs := `[]`
	if len(images) > 0 {
		imgs = `["` + strings.Join(images, `","`) + `"]`
	}
	return fmt.Sprintf(`{"title":%q,"highlight":["h"],"category":"kitchen","brand":"Acme","images":%s,"price":%v,"mrp":1000,"stock":3}`,
		title, imgs, price)
}

func coloredJSON(groupID, colorName, image string) string {
	return fmt.Sprintf(`{"hasColor":true,"groupId":%q,"title":"Tee","highlight":["cotton"],"category":"apparel","brand":"Acme",
		"colors":[{"connectionId":"red-1","name":%q,"image":%q,"price":20,"stock":4}]}`, groupID, colorName, image)
}

const phoneJSON = `{"hasSize":true,"highlight":["5G"],"category":"phones","brand":"Acme","sizeKind":"storage",
	"sizes":[
		{"name":"256GB","title":"Smart Phone 256GB","price":300,"stock":1},
		{"name":"64GB","title":"Smart Phone 64GB","price":100,"stock":1},
		{"name":"128GB","title":"Smart Phone 128GB","price":200,"stock":1}
	]}`

func TestCreateFlat(t *testing.T) {
	f := newProductFixture()

	p, err := f.svc.Create(context.Background(), []byte(flatJSON("Bottle", 800, "https://cdn.example.com/a.webp")))
	require.NoError(t, err)
	assert.False(t, p.ID.IsZero())
	assert.Equal(t, 20, p.DiscountPercent)
	assert.Len(t, f.store.items, 1)
	assert.Equal(t, 1, f.reports.calls)
	assert.Empty(t, f.media.deleted)
}

func TestCreateValidationReleasesStagedMedia(t *testing.T) {
	f := newProductFixture()
	raw := `{"title":"Mug","highlight":["h"],"category":"kitchen","brand":"Acme","images":["https://cdn.example.com/mug.webp"],"stock":1}`

	_, err := f.svc.Create(context.Background(), []byte(raw))

	require.ErrorIs(t, err, catalog.ErrMissingRequiredField)
	var staged *StagedMediaError
	require.True(t, errors.As(err, &staged))
	assert.Equal(t, []string{"https://cdn.example.com/mug.webp"}, staged.Refs)
	assert.Equal(t, []string{"https://cdn.example.com/mug.webp"}, f.media.deleted)
	assert.Zero(t, f.reports.calls)
}

func TestUpdateValidationReleasesStagedColorImage(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	oldImg := "https://cdn.example.com/red.webp"
	newImg := "https://cdn.example.com/crimson.webp"
	p, err := f.svc.Create(ctx, []byte(coloredJSON("g1", "Red", oldImg)))
	require.NoError(t, err)

	patch := `{"colors":[{"connectionId":"red-1","name":"Crimson","image":"` + newImg + `","price":20,"stock":-1}]}`
	_, err = f.svc.Update(ctx, p.ID.Hex(), []byte(patch))

	require.ErrorIs(t, err, catalog.ErrInvalidStock)
	var staged *StagedMediaError
	require.True(t, errors.As(err, &staged))
	assert.Equal(t, []string{newImg}, staged.Refs)
	assert.Equal(t, []string{newImg}, f.media.deleted)

	stored, err := f.store.GetByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, oldImg, stored.Colors[0].Image)
}

func TestCreateKeepsMediaHeldByOtherProducts(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	shared := "https://cdn.example.com/shared.webp"
	_, err := f.svc.Create(ctx, []byte(flatJSON("First", 800, shared)))
	require.NoError(t, err)

	raw := `{"title":"Second","highlight":["h"],"category":"kitchen","brand":"Acme","images":["` + shared + `"],"price":-1,"stock":1}`
	_, err = f.svc.Create(ctx, []byte(raw))

	require.ErrorIs(t, err, catalog.ErrInvalidPrice)
	assert.Empty(t, f.media.deleted)
}

func TestCreatePersistFailureQueuesWhenDeleteFails(t *testing.T) {
	f := newProductFixture()
	f.store.createErr = errors.New("mongo down")
	f.media.deleteErr = errors.New("s3 down")

	_, err := f.svc.Create(context.Background(), []byte(flatJSON("Bottle", 800, "https://cdn.example.com/a.webp")))

	var staged *StagedMediaError
	require.True(t, errors.As(err, &staged))
	assert.EqualError(t, staged.Err, "mongo down")
	assert.Equal(t, []string{"https://cdn.example.com/a.webp"}, f.queue.pushed)
}

func TestSearchPagination(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	for i := 1; i <= 45; i++ {
		_, err := f.svc.Create(ctx, []byte(flatJSON(fmt.Sprintf("Item %d", i), 800)))
		require.NoError(t, err)
	}

	res, err := f.svc.Search(ctx, url.Values{"page": {"2"}, "limit": {"20"}})
	require.NoError(t, err)

	assert.Equal(t, int64(45), res.TotalItems)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Products, 20)
	assert.Equal(t, "Item 21", res.Products[0].Title)
	assert.Equal(t, "Item 40", res.Products[19].Title)

	last, err := f.svc.Search(ctx, url.Values{"page": {"3"}, "limit": {"20"}})
	require.NoError(t, err)
	assert.Len(t, last.Products, 5)
}

func TestSearchRanksSizes(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	_, err := f.svc.Create(ctx, []byte(phoneJSON))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, []byte(flatJSON("Phone Case", 10)))
	require.NoError(t, err)

	res, err := f.svc.Search(ctx, url.Values{"q": {"phone 128GB"}})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	p := res.Products[0]
	assert.Equal(t, "Smart Phone 64GB", p.Title)
	assert.Equal(t, 1, p.SelectedSizeIndex)

	stored, err := f.store.GetByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Zero(t, stored.SelectedSizeIndex)
}

func TestSearchRejectsBadFilters(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.Search(context.Background(), url.Values{"price[gte]": {"cheap"}})
	assert.ErrorIs(t, err, catalog.ErrInvalidFilterValue)

	_, err = f.svc.Search(context.Background(), url.Values{"sort": {"secret-desc"}})
	assert.ErrorIs(t, err, catalog.ErrInvalidFilterValue)
}

func TestUpdatePropagatesColorAndReleasesOldImage(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	oldImg := "https://cdn.example.com/red.webp"
	newImg := "https://cdn.example.com/crimson.webp"

	a, err := f.svc.Create(ctx, []byte(coloredJSON("g1", "Red", oldImg)))
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, []byte(coloredJSON("g1", "Red", oldImg)))
	require.NoError(t, err)

	patch := `{"colors":[{"connectionId":"red-1","name":"Crimson","image":"` + newImg + `","price":20,"stock":4}]}`
	updated, err := f.svc.Update(ctx, a.ID.Hex(), []byte(patch))
	require.NoError(t, err)
	assert.Equal(t, "Crimson", updated.Colors[0].Name)

	sibling, err := f.store.GetByID(ctx, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Crimson", sibling.Colors[0].Name)
	assert.Equal(t, newImg, sibling.Colors[0].Image)

	assert.Equal(t, []string{oldImg}, f.media.deleted)

	group, err := f.svc.ListGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, group, 2)
}

func TestUpdateRejectsDerivedPricing(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p, err := f.svc.Create(ctx, []byte(phoneJSON))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, p.ID.Hex(), []byte(`{"price": 5}`))
	assert.ErrorIs(t, err, catalog.ErrInvalidPayload)

	_, err = f.svc.Update(ctx, "000000000000000000000000", []byte(`{"title":"x"}`))
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDeleteReleasesUnsharedMedia(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	shared := "https://cdn.example.com/shared.webp"
	own := "https://cdn.example.com/own.webp"

	p, err := f.svc.Create(ctx, []byte(flatJSON("A", 800, shared, own)))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, []byte(flatJSON("B", 800, shared)))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID.Hex()))
	assert.Equal(t, []string{own}, f.media.deleted)
	assert.ErrorIs(t, f.svc.Delete(ctx, p.ID.Hex()), utils.ErrNotFound)
}

func TestReplaceImage(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p, err := f.svc.Create(ctx, []byte(flatJSON("A", 800, "https://cdn.example.com/old.webp")))
	require.NoError(t, err)

	updated, err := f.svc.ReplaceImage(ctx, p.ID.Hex(), 0, "new.webp", strings.NewReader("img"), "image/webp")
	require.NoError(t, err)
	require.Len(t, f.media.uploaded, 1)
	assert.Equal(t, f.media.uploaded[0], updated.Images[0])
	assert.Equal(t, []string{"https://cdn.example.com/old.webp"}, f.media.deleted)

	_, err = f.svc.ReplaceImage(ctx, p.ID.Hex(), 3, "x.webp", strings.NewReader(""), "image/webp")
	assert.ErrorIs(t, err, catalog.ErrInvalidPayload)
}

func TestReplaceImagePersistFailureReleasesUpload(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p, err := f.svc.Create(ctx, []byte(flatJSON("A", 800, "https://cdn.example.com/old.webp")))
	require.NoError(t, err)
	f.store.replaceErr = errors.New("mongo down")

	_, err = f.svc.ReplaceImage(ctx, p.ID.Hex(), 0, "new.webp", strings.NewReader("img"), "image/webp")

	var staged *StagedMediaError
	require.True(t, errors.As(err, &staged))
	assert.Equal(t, f.media.uploaded, f.media.deleted)
	stored, _ := f.store.GetByID(ctx, p.ID.Hex())
	assert.Equal(t, []string{"https://cdn.example.com/old.webp"}, stored.Images)
}

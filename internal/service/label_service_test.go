package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

type memCategories struct {
	mu    sync.Mutex
	items map[int]models.Category
	next  int
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Name == c.Name {
			return utils.ErrDuplicateUniqueField
		}
	}
	m.next++
	c.ID = m.next
	m.items[c.ID] = *c
	return nil
}

func (m *memCategories) GetByID(_ context.Context, id int) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (m *memCategories) List(context.Context) ([]models.Category, error) { return nil, nil }

func (m *memCategories) Search(context.Context, repository.LabelQuery) ([]models.Category, int, error) {
	return nil, 0, nil
}

func (m *memCategories) Update(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ID]; !ok {
		return utils.ErrNotFound
	}
	m.items[c.ID] = *c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return utils.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestCategoryImageLifecycle(t *testing.T) {
	media := &fakeMedia{}
	reports := &fakeInvalidator{}
	svc := NewCategoryService(&memCategories{items: map[int]models.Category{}}, media, &fakeQueue{}, reports)
	ctx := context.Background()

	c, err := svc.Create(ctx, " Kitchen ", strPtr("https://cdn.example.com/k1.webp"))
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", c.Name)

	_, err = svc.Create(ctx, "Kitchen", strPtr("https://cdn.example.com/dup.webp"))
	require.ErrorIs(t, err, utils.ErrDuplicateUniqueField)
	assert.Equal(t, []string{"https://cdn.example.com/dup.webp"}, media.deleted)

	_, err = svc.Update(ctx, c.ID, "Kitchenware", nil)
	require.NoError(t, err)
	assert.Len(t, media.deleted, 1)

	_, err = svc.Update(ctx, c.ID, "Kitchenware", strPtr("https://cdn.example.com/k2.webp"))
	require.NoError(t, err)
	assert.Contains(t, media.deleted, "https://cdn.example.com/k1.webp")

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.Contains(t, media.deleted, "https://cdn.example.com/k2.webp")
	assert.Equal(t, 4, reports.calls)

	assert.ErrorIs(t, svc.Delete(ctx, c.ID), utils.ErrNotFound)
}

func TestParseLabelSearch(t *testing.T) {
	s, err := ParseLabelSearch(" ac ", "name-desc", "-2", "100", catalog.DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, "ac", s.Query.Search)
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 50, s.Limit)
	assert.Equal(t, 50, s.Query.Offset)
	require.NotNil(t, s.Query.Sort)
	assert.True(t, s.Query.Sort.Desc)

	_, err = ParseLabelSearch("", "password", "", "", catalog.DefaultLimits)
	assert.ErrorIs(t, err, catalog.ErrInvalidFilterValue)
}

type memCoupons struct {
	items map[int]models.Coupon
	next  int
}

func (m *memCoupons) Create(_ context.Context, c *models.Coupon) error {
	for _, existing := range m.items {
		if existing.Code == c.Code {
			return utils.ErrDuplicateUniqueField
		}
	}
	m.next++
	c.ID = m.next
	m.items[c.ID] = *c
	return nil
}

func (m *memCoupons) GetByID(_ context.Context, id int) (*models.Coupon, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (m *memCoupons) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, c := range m.items {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memCoupons) List(context.Context) ([]models.Coupon, error) { return nil, nil }

func (m *memCoupons) Update(_ context.Context, c *models.Coupon) error {
	m.items[c.ID] = *c
	return nil
}

func (m *memCoupons) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func TestCouponLifecycle(t *testing.T) {
	svc := NewCouponService(&memCoupons{items: map[int]models.Coupon{}})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.Create(ctx, CouponInput{Code: "x", DiscountPercent: 0})
	assert.ErrorIs(t, err, catalog.ErrInvalidPrice)
	_, err = svc.Create(ctx, CouponInput{Code: "x", DiscountPercent: 101})
	assert.ErrorIs(t, err, catalog.ErrInvalidPrice)

	expires := now.Add(time.Hour)
	c, err := svc.Create(ctx, CouponInput{Code: " save10 ", DiscountPercent: 10, ExpiresAt: &expires})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", c.Code)
	assert.True(t, c.IsActive)

	_, err = svc.Create(ctx, CouponInput{Code: "SAVE10", DiscountPercent: 5})
	assert.ErrorIs(t, err, utils.ErrDuplicateUniqueField)

	generated, err := svc.Create(ctx, CouponInput{DiscountPercent: 5})
	require.NoError(t, err)
	assert.Len(t, generated.Code, 8)

	got, err := svc.Validate(ctx, "save10")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	now = now.Add(2 * time.Hour)
	_, err = svc.Validate(ctx, "SAVE10")
	assert.ErrorIs(t, err, utils.ErrCouponUnavailable)

	inactive := false
	_, err = svc.Update(ctx, generated.ID, CouponInput{DiscountPercent: 5, IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.Validate(ctx, generated.Code)
	assert.ErrorIs(t, err, utils.ErrCouponUnavailable)

	_, err = svc.Validate(ctx, "NOPE")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

type memAdmins struct {
	user    *models.AdminUser
	touched int
}

func (m *memAdmins) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	if m.user == nil || m.user.Email != email {
		return nil, utils.ErrNotFound
	}
	return m.user, nil
}

func (m *memAdmins) Create(_ context.Context, user *models.AdminUser) error {
	user.ID = 1
	m.user = user
	return nil
}

func (m *memAdmins) TouchLastLogin(context.Context, int) error {
	m.touched++
	return nil
}

func TestAdminLogin(t *testing.T) {
	store := &memAdmins{}
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	svc := NewAdminAuthService(store, issuer)
	ctx := context.Background()

	user, err := svc.CreateAdmin(ctx, "admin@example.com", "s3cret!", "Admin")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret!")))

	token, _, err := svc.Login(ctx, "admin@example.com", "s3cret!")
	require.NoError(t, err)
	claims, err := issuer.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, 1, store.touched)

	_, _, err = svc.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret!")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	store.user.IsActive = false
	_, _, err = svc.Login(ctx, "admin@example.com", "s3cret!")
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}

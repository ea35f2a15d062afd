package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

const couponColumns = `id, code, discount_percent, is_active, expires_at, created_at, updated_at`

// CouponRepository provides data access methods for the coupons table.
type CouponRepository struct {
	db *sqlx.DB
}

// NewCouponRepository creates a new CouponRepository.
func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// Create inserts a coupon. Code collisions return ErrDuplicateUniqueField.
func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	const q = `
		INSERT INTO coupons (code, discount_percent, is_active, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q, c.Code, c.DiscountPercent, c.IsActive, c.ExpiresAt).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapPQErr(err)
}

// GetByID finds a coupon by id.
func (r *CouponRepository) GetByID(ctx context.Context, id int) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.GetContext(ctx, &c, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id); err != nil {
		return nil, mapPQErr(err)
	}
	return &c, nil
}

// GetByCode finds a coupon by its uppercase code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.GetContext(ctx, &c, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code); err != nil {
		return nil, mapPQErr(err)
	}
	return &c, nil
}

// List returns coupons newest first.
func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	coupons := []models.Coupon{}
	err := r.db.SelectContext(ctx, &coupons, `SELECT `+couponColumns+` FROM coupons ORDER BY id DESC`)
	return coupons, err
}

// Update writes every mutable column of a coupon.
func (r *CouponRepository) Update(ctx context.Context, c *models.Coupon) error {
	const q = `
		UPDATE coupons
		SET code = $1, discount_percent = $2, is_active = $3, expires_at = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q, c.Code, c.DiscountPercent, c.IsActive, c.ExpiresAt, c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapPQErr(err)
}

// Delete removes a coupon.
func (r *CouponRepository) Delete(ctx context.Context, id int) error {
	return expectRow(r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id))
}

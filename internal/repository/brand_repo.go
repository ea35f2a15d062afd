package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// BrandRepository provides data access methods for the brands table.
type BrandRepository struct {
	db *sqlx.DB
}

// NewBrandRepository creates a new BrandRepository.
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// Create inserts a brand. Name collisions return ErrDuplicateUniqueField.
func (r *BrandRepository) Create(ctx context.Context, b *models.Brand) error {
	const q = `
		INSERT INTO brands (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q, b.Name).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return mapPQErr(err)
}

// GetByID finds a brand by id.
func (r *BrandRepository) GetByID(ctx context.Context, id int) (*models.Brand, error) {
	var b models.Brand
	if err := r.db.GetContext(ctx, &b, `SELECT id, name, created_at, updated_at FROM brands WHERE id = $1`, id); err != nil {
		return nil, mapPQErr(err)
	}
	return &b, nil
}

// List returns every brand ordered by name.
func (r *BrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	brands := []models.Brand{}
	err := r.db.SelectContext(ctx, &brands, `SELECT id, name, created_at, updated_at FROM brands ORDER BY name`)
	return brands, err
}

// Search returns one page of brands whose name contains q.Search and the total.
func (r *BrandRepository) Search(ctx context.Context, q LabelQuery) ([]models.Brand, int, error) {
	const where = `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM brands `+where, q.Search); err != nil {
		return nil, 0, err
	}

	brands := []models.Brand{}
	list := `SELECT id, name, created_at, updated_at FROM brands ` + where + ` ` + q.orderBy() + ` LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &brands, list, q.Search, q.Limit, q.Offset); err != nil {
		return nil, 0, err
	}
	return brands, total, nil
}

// Update renames a brand.
func (r *BrandRepository) Update(ctx context.Context, b *models.Brand) error {
	const q = `
		UPDATE brands SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q, b.Name, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
	return mapPQErr(err)
}

// Delete removes a brand.
func (r *BrandRepository) Delete(ctx context.Context, id int) error {
	return expectRow(r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id))
}

// Count returns the number of brands.
func (r *BrandRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM brands`)
	return n, err
}

package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

const categoryColumns = `id, name, image, created_at, updated_at`

// CategoryRepository provides data access methods for the categories table.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	const q = `
		INSERT INTO categories (name, image)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q, c.Name, c.Image).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapPQErr(err)
}

// GetByID finds a category by id.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	if err := r.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id); err != nil {
		return nil, mapPQErr(err)
	}
	return &c, nil
}

// List returns every category ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.SelectContext(ctx, &categories, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	return categories, err
}

// Search returns one page of categories whose name contains q.Search and the total.
func (r *CategoryRepository) Search(ctx context.Context, q LabelQuery) ([]models.Category, int, error) {
	const where = `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM categories `+where, q.Search); err != nil {
		return nil, 0, err
	}

	categories := []models.Category{}
	list := `SELECT ` + categoryColumns + ` FROM categories ` + where + ` ` + q.orderBy() + ` LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &categories, list, q.Search, q.Limit, q.Offset); err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// Update writes the name and image of a category.
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	const q = `
		UPDATE categories SET name = $1, image = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q, c.Name, c.Image, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapPQErr(err)
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	return expectRow(r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id))
}

// Count returns the number of categories.
func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM categories`)
	return n, err
}

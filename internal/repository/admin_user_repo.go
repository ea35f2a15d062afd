package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// AdminUserRepository provides data access methods for the admin_users table.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByEmail finds an admin by email.
func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, password_hash, name, is_active, last_login_at, created_at, updated_at
		FROM admin_users
		WHERE email = $1
	`, email)
	if err != nil {
		return nil, mapPQErr(err)
	}
	return &user, nil
}

// Create inserts an admin user.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash, name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Name, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapPQErr(err)
}

// TouchLastLogin records a successful login.
func (r *AdminUserRepository) TouchLastLogin(ctx context.Context, id int) error {
	return expectRow(r.db.ExecContext(ctx, `UPDATE admin_users SET last_login_at = NOW() WHERE id = $1`, id))
}

// Ping checks the Postgres connection.
func (r *AdminUserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

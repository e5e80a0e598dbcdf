package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rowad-platform/merit-api/internal/models"
)

// UserRepository manages persistence for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, name, email, role, password_hash, created_at)
        VALUES (:id, :name, :email, :role, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID fetches a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, "SELECT id, name, email, role, password_hash, created_at FROM users WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByName fetches a user by exact account name.
func (r *UserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, "SELECT id, name, email, role, password_hash, created_at FROM users WHERE name = $1", name); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail fetches a user by e-mail address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, "SELECT id, name, email, role, password_hash, created_at FROM users WHERE email = $1", email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByName checks whether an account name is already taken.
func (r *UserRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM users WHERE name = $1 LIMIT 1", name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check user name: %w", err)
	}
	return true, nil
}

// ExistsByEmail checks whether an e-mail address is already registered.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM users WHERE email = $1 LIMIT 1", email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check user email: %w", err)
	}
	return true, nil
}

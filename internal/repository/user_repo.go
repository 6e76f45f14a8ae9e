package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"postboard/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of UserRepo interface at compile time.
var _ UserRepo = (*UserRepository)(nil)

const (
	insertUserSQL = `INSERT INTO users (username, email, password_hash, fullname, age, image, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	userColumns   = `id, username, email, password_hash, fullname, age, image, created_at, updated_at`

	selectUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	selectUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	updateProfileSQL     = `UPDATE users SET fullname = ?, image = ?, updated_at = ? WHERE id = ?`
)

// Create inserts a new user and returns its ID.
// A clash on the unique email or username index is reported as ErrDuplicateEmail / ErrDuplicateUsername.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	now := time.Now().UTC()
	if u.Image == "" {
		u.Image = models.DefaultImage
	}

	var age any
	if u.Age != nil {
		age = *u.Age
	}

	res, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Username, u.Email, u.PasswordHash, u.FullName, age, u.Image, now, now)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return 0, fmt.Errorf("insert user %q: %w", u.Username, dup)
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", u.Username, err)
	}
	u.ID, u.CreatedAt, u.UpdatedAt = lastID, now, now
	return lastID, nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByEmailSQL, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", email, err)
	}
	return u, nil
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return u, nil
}

// UpdateProfile overwrites the editable profile fields of one user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, fullName, image string) error {
	res, err := r.db.ExecContext(ctx, updateProfileSQL, fullName, image, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u   models.User
		age sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &age, &u.Image, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		u.Age = &a
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

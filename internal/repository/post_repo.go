package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"postboard/internal/models"
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

var _ PostRepo = (*PostRepository)(nil)

const (
	insertPostSQL      = `INSERT INTO posts (user_id, content, created_at, updated_at) VALUES (?, ?, ?, ?)`
	selectPostByIDSQL  = `SELECT id, user_id, content, created_at, updated_at FROM posts WHERE id = ?`
	selectPostsByUser  = `SELECT id, user_id, content, created_at, updated_at FROM posts WHERE user_id = ? ORDER BY id ASC`
	updatePostOwnedSQL = `UPDATE posts SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	deletePostOwnedSQL = `DELETE FROM posts WHERE id = ? AND user_id = ?`
)

// Create inserts a post for userID and returns it with its assigned ID.
func (r *PostRepository) Create(ctx context.Context, userID int64, content string) (*models.Post, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, insertPostSQL, userID, content, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert post for user %d: %w", userID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id for post: %w", err)
	}
	return &models.Post{ID: id, UserID: userID, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}

// GetByID fetches a post. Returns (nil, nil) if not found.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	err := r.db.QueryRowContext(ctx, selectPostByIDSQL, id).
		Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post %d: %w", id, err)
	}
	return &p, nil
}

// ListByUser returns the posts owned by userID in insertion order.
func (r *PostRepository) ListByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPostsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("select posts of user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Post, 0, 16)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContent replaces the content of a post owned by userID.
// ErrNotFound means no post with that id belongs to userID.
func (r *PostRepository) UpdateContent(ctx context.Context, id, userID int64, content string) error {
	res, err := r.db.ExecContext(ctx, updatePostOwnedSQL, content, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// Delete removes a post owned by userID.
func (r *PostRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, deletePostOwnedSQL, id, userID)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for post %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

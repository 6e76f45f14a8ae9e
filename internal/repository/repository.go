package repository

import (
	"context"
	"database/sql"
	"time"

	"postboard/internal/models"
)

type UserRepo interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, fullName, image string) error
}

type PostRepo interface {
	Create(ctx context.Context, userID int64, content string) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Post, error)
	UpdateContent(ctx context.Context, id, userID int64, content string) error
	Delete(ctx context.Context, id, userID int64) error
}

type ActivityRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, userID int64, from, to time.Time, typ string) ([]models.ActivityEvent, error)
}

type Repository struct {
	Users    UserRepo
	Posts    PostRepo
	Activity ActivityRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Activity: NewActivitySQLite(db),
	}
}

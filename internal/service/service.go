package service

import (
	"context"

	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, in RegisterInput) (string, error)
	GenerateToken(ctx context.Context, email, password string) (string, error)
	ParseToken(accessToken string) (Identity, error)
}

// Posts exposes owner-checked post operations.
type Posts interface {
	CreatePost(ctx context.Context, id Identity, content string) (*models.Post, error)
	GetOwnedPost(ctx context.Context, id Identity, postID int64) (*models.Post, error)
	UpdatePost(ctx context.Context, id Identity, postID int64, content string) error
	DeletePost(ctx context.Context, id Identity, postID int64) error
}

// Profile exposes the acting user's own profile; edits are self-only.
type Profile interface {
	Me(ctx context.Context, id Identity) (*models.User, error)
	ProfileForm(ctx context.Context, id Identity, targetID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id Identity, targetID int64, upd ProfileUpdate) (*models.User, error)
}

// Activity exposes the caller's append-only activity log.
type Activity interface {
	ListActivity(ctx context.Context, id Identity, f LogFilter) ([]models.ActivityEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Posts
	Profile
	Activity
}

// Deps are the collaborators that live outside the relational store.
// Everything except Tokens is optional.
type Deps struct {
	Tokens         *TokenService
	Avatars        AvatarStore
	Cache          ProfileCache
	Publisher      ActivityPublisher
	MaxAvatarBytes int64
	Log            *logger.Logger
}

// NewService wires repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	activity := NewActivityService(repos.Activity, repos.Users, deps.Publisher, deps.Log)
	return &Service{
		Authorization: NewAuthService(repos.Users, deps.Tokens, activity),
		Posts:         NewPostService(repos.Users, repos.Posts, activity, deps.Cache),
		Profile: NewProfileService(repos.Users, repos.Posts, activity, ProfileOptions{
			Avatars:        deps.Avatars,
			Cache:          deps.Cache,
			MaxAvatarBytes: deps.MaxAvatarBytes,
			Log:            deps.Log,
		}),
		Activity: activity,
	}
}

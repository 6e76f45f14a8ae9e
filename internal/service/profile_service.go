package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/storage"
)

// DefaultMaxAvatarBytes caps avatar uploads when no limit is configured.
const DefaultMaxAvatarBytes int64 = 5 << 20

var allowedAvatarExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

var errAvatarRejected = errors.New("avatar rejected")

// ProfileCache holds rendered profile views keyed by email.
// Invalidate bumps the generation; SetIfCurrent refuses a view loaded under an older one.
type ProfileCache interface {
	Get(ctx context.Context, email string) (*models.User, error) // (nil, nil) on miss
	Generation(ctx context.Context, email string) (int64, error)
	SetIfCurrent(ctx context.Context, email string, gen int64, u *models.User) error
	Invalidate(ctx context.Context, email string) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*models.User, error) { return nil, nil }
func (noopCache) Generation(context.Context, string) (int64, error) { return 0, nil }
func (noopCache) SetIfCurrent(context.Context, string, int64, *models.User) error { return nil }
func (noopCache) Invalidate(context.Context, string) error { return nil }

// AvatarStore persists uploaded avatar bytes under a generated name.
type AvatarStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) error
	Delete(ctx context.Context, name string) error
}

// AvatarUpload is one uploaded image as received from the form.
type AvatarUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ProfileUpdate carries the editable profile fields. Empty FullName keeps the current one.
type ProfileUpdate struct {
	FullName string
	Avatar   *AvatarUpload
}

type ProfileOptions struct {
	Avatars        AvatarStore
	Cache          ProfileCache
	MaxAvatarBytes int64
	Log            *logger.Logger
}

type ProfileService struct {
	users     repository.UserRepo
	posts     repository.PostRepo
	activity  activityRecorder
	avatars   AvatarStore
	cache     ProfileCache
	maxAvatar int64
	log       *logger.Logger
}

func NewProfileService(users repository.UserRepo, posts repository.PostRepo, activity activityRecorder, opts ProfileOptions) *ProfileService {
	s := &ProfileService{
		users:     users,
		posts:     posts,
		activity:  activity,
		avatars:   opts.Avatars,
		cache:     opts.Cache,
		maxAvatar: opts.MaxAvatarBytes,
		log:       opts.Log,
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	if s.maxAvatar <= 0 {
		s.maxAvatar = DefaultMaxAvatarBytes
	}
	return s
}

// Me returns the acting user with their posts, served from cache when possible.
func (s *ProfileService) Me(ctx context.Context, id Identity) (*models.User, error) {
	email := normalizeIdentity(id.Email)
	if u, err := s.cache.Get(ctx, email); err == nil && u != nil {
		return u, nil
	} else if err != nil && s.log != nil {
		s.log.Debugw("profile_cache_get_failed", "err", err)
	}
	gen, genErr := s.cache.Generation(ctx, email)

	u, err := resolveActor(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	u.Posts = posts

	if genErr != nil {
		if s.log != nil {
			s.log.Debugw("profile_cache_generation_failed", "err", genErr)
		}
		return u, nil
	}
	if err := s.cache.SetIfCurrent(ctx, email, gen, u); err != nil && s.log != nil {
		s.log.Debugw("profile_cache_set_skipped", "err", err)
	}
	return u, nil
}

// ProfileForm returns the target profile for editing; only the acting user's own ID is allowed.
func (s *ProfileService) ProfileForm(ctx context.Context, id Identity, targetID int64) (*models.User, error) {
	actor, err := resolveActor(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeSelf(actor, targetID); err != nil {
		return nil, err
	}
	return actor, nil
}

// UpdateProfile applies upd to the acting user's own profile.
// A rejected avatar is skipped with a warning; the text fields still apply.
func (s *ProfileService) UpdateProfile(ctx context.Context, id Identity, targetID int64, upd ProfileUpdate) (*models.User, error) {
	actor, err := resolveActor(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeSelf(actor, targetID); err != nil {
		return nil, err
	}

	fullName := actor.FullName
	if fn := strings.TrimSpace(upd.FullName); fn != "" {
		fullName = fn
	}

	image := actor.Image
	if upd.Avatar != nil {
		name, err := s.storeAvatar(ctx, upd.Avatar)
		switch {
		case errors.Is(err, errAvatarRejected):
			if s.log != nil {
				s.log.Warnw("avatar_upload_ignored", "user_id", actor.ID, "reason", err)
			}
		case err != nil:
			return nil, storeErr("save avatar", err)
		default:
			image = name
		}
	}

	if err := s.users.UpdateProfile(ctx, actor.ID, fullName, image); err != nil {
		if image != actor.Image {
			s.discardAvatar(ctx, actor.ID, image)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("update profile", err)
	}
	actor.FullName, actor.Image = fullName, image

	_ = s.cache.Invalidate(ctx, actor.Email)
	if s.activity != nil {
		s.activity.Record(ctx, actor.ID, ActivityProfileUpdate, "profile updated", map[string]any{"image": image})
	}
	return actor, nil
}

func (s *ProfileService) storeAvatar(ctx context.Context, a *AvatarUpload) (string, error) {
	if s.avatars == nil {
		return "", errors.Join(errAvatarRejected, errors.New("no avatar store configured"))
	}
	ext := strings.ToLower(filepath.Ext(a.Filename))
	if !allowedAvatarExt[ext] {
		return "", errors.Join(errAvatarRejected, errors.New("extension "+ext+" not allowed"))
	}
	if a.Size <= 0 || a.Size > s.maxAvatar {
		return "", errors.Join(errAvatarRejected, errors.New("size out of range"))
	}

	name, err := storage.NewFilename(a.Filename)
	if err != nil {
		return "", err
	}
	if err := s.avatars.Save(ctx, name, a.Body, a.Size); err != nil {
		return "", err
	}
	return name, nil
}

// discardAvatar removes a stored avatar no row points to.
func (s *ProfileService) discardAvatar(ctx context.Context, userID int64, name string) {
	if err := s.avatars.Delete(context.WithoutCancel(ctx), name); err != nil && s.log != nil {
		s.log.Warnw("avatar_cleanup_failed", "user_id", userID, "image", name, "err", err)
	}
}

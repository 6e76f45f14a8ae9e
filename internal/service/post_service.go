package service

import (
	"context"
	"errors"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type PostService struct {
	users    repository.UserRepo
	posts    repository.PostRepo
	activity activityRecorder
	cache    ProfileCache
}

func NewPostService(users repository.UserRepo, posts repository.PostRepo, activity activityRecorder, cache ProfileCache) *PostService {
	if cache == nil {
		cache = noopCache{}
	}
	return &PostService{users: users, posts: posts, activity: activity, cache: cache}
}

// CreatePost stores trimmed content for the acting user. Blank content is an ErrValidation.
func (s *PostService) CreatePost(ctx context.Context, id Identity, content string) (*models.Post, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	actor, err := resolveActor(ctx, s.users, id)
	if err != nil {
		return nil, err
	}

	p, err := s.posts.Create(ctx, actor.ID, content)
	if err != nil {
		return nil, storeErr("create post", err)
	}
	s.changed(ctx, actor, ActivityPostCreate, "post created", p.ID)
	return p, nil
}

// GetOwnedPost loads a post only if the acting user owns it.
func (s *PostService) GetOwnedPost(ctx context.Context, id Identity, postID int64) (*models.Post, error) {
	_, p, err := s.loadOwned(ctx, id, postID)
	return p, err
}

// UpdatePost replaces the content of an owned post.
func (s *PostService) UpdatePost(ctx context.Context, id Identity, postID int64, content string) error {
	content, err := normalizeContent(content)
	if err != nil {
		return err
	}
	actor, _, err := s.loadOwned(ctx, id, postID)
	if err != nil {
		return err
	}

	// the owner filter in the statement covers a concurrent delete
	if err := s.posts.UpdateContent(ctx, postID, actor.ID, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storeErr("update post", err)
	}
	s.changed(ctx, actor, ActivityPostEdit, "post edited", postID)
	return nil
}

// DeletePost removes an owned post.
func (s *PostService) DeletePost(ctx context.Context, id Identity, postID int64) error {
	actor, _, err := s.loadOwned(ctx, id, postID)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storeErr("delete post", err)
	}
	s.changed(ctx, actor, ActivityPostDelete, "post deleted", postID)
	return nil
}

func (s *PostService) loadOwned(ctx context.Context, id Identity, postID int64) (*models.User, *models.Post, error) {
	actor, err := resolveActor(ctx, s.users, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, storeErr("load post", err)
	}
	if err := authorizePost(actor, p); err != nil {
		return nil, nil, err
	}
	return actor, p, nil
}

func (s *PostService) changed(ctx context.Context, actor *models.User, typ, desc string, postID int64) {
	_ = s.cache.Invalidate(ctx, actor.Email)
	if s.activity != nil {
		s.activity.Record(ctx, actor.ID, typ, desc, map[string]any{"post_id": postID})
	}
}

package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/repository"
)

// resolveActor loads the user behind a verified identity. Ownership is always
// derived from this fresh read, never from anything the client sends.
func resolveActor(ctx context.Context, users repository.UserRepo, id Identity) (*models.User, error) {
	u, err := users.GetByEmail(ctx, normalizeIdentity(id.Email))
	if err != nil {
		return nil, storeErr("load acting user", err)
	}
	if u == nil {
		// valid token for an account that no longer resolves
		return nil, ErrUnauthenticated
	}
	return u, nil
}

func authorizePost(actor *models.User, p *models.Post) error {
	if p == nil {
		return ErrNotFound
	}
	if p.UserID != actor.ID {
		return ErrForbidden
	}
	return nil
}

func authorizeSelf(actor *models.User, targetID int64) error {
	if actor.ID != targetID {
		return ErrForbidden
	}
	return nil
}

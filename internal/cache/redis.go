package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"postboard/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL       = time.Minute
	profilePrefix    = "profile:"
	generationPrefix = "profile-gen:"
)

// ErrStale reports that the profile changed while the view was being loaded.
var ErrStale = errors.New("cache: profile changed during load")

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ProfileCache keeps profile views (user plus posts) in redis as JSON.
type ProfileCache struct {
	db  *redis.Client
	ttl time.Duration
}

// New connects and pings redis.
func New(ctx context.Context, opts Options) (*ProfileCache, error) {
	const op = "cache.New"
	db := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProfileCache{db: db, ttl: ttl}, nil
}

// Get returns (nil, nil) on a miss.
func (c *ProfileCache) Get(ctx context.Context, email string) (*models.User, error) {
	const op = "cache.Get"
	val, err := c.db.Get(ctx, profilePrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var u models.User
	if err := json.Unmarshal([]byte(val), &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// Generation returns the current write generation for email. Read it before
// loading a view and hand it to SetIfCurrent.
func (c *ProfileCache) Generation(ctx context.Context, email string) (int64, error) {
	gen, err := c.db.Get(ctx, generationPrefix+email).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache.Generation: %w", err)
	}
	return gen, nil
}

// SetIfCurrent stores u only while the generation still equals gen, so a view
// loaded before an Invalidate is never written back. Returns ErrStale otherwise.
func (c *ProfileCache) SetIfCurrent(ctx context.Context, email string, gen int64, u *models.User) error {
	const op = "cache.SetIfCurrent"
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	genKey := generationPrefix + email
	err = c.db.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, profilePrefix+email, data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate drops the cached view and bumps the generation in one transaction.
func (c *ProfileCache) Invalidate(ctx context.Context, email string) error {
	_, err := c.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationPrefix+email)
		pipe.Del(ctx, profilePrefix+email)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache.Invalidate: %w", err)
	}
	return nil
}

func (c *ProfileCache) Close() error {
	return c.db.Close()
}

package service

import (
	"context"
	"errors"
	"testing"
)

type postFixture struct {
	svc   *PostService
	users *memUsers
	posts *memPosts
	rec   *fakeRecorder
	cache *fakeCache
	alice Identity
	bob   Identity
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	f := &postFixture{
		users: newMemUsers(),
		posts: newMemPosts(),
		rec:   &fakeRecorder{},
		cache: newFakeCache(),
		alice: Identity{Email: "alice@example.com"},
		bob:   Identity{Email: "bob@example.com"},
	}
	f.users.seed("alice", "alice@example.com")
	f.users.seed("bob", "bob@example.com")
	f.svc = NewPostService(f.users, f.posts, f.rec, f.cache)
	return f
}

func TestPostService_CreatePost_TrimsContent(t *testing.T) {
	f := newPostFixture(t)

	p, err := f.svc.CreatePost(context.Background(), f.alice, "  hello  ")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.Content != "hello" || p.UserID != 1 {
		t.Fatalf("unexpected post: %+v", p)
	}
	if got := f.rec.types(); len(got) != 1 || got[0] != ActivityPostCreate {
		t.Fatalf("expected POST_CREATE, got %v", got)
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != "alice@example.com" {
		t.Fatalf("cache not invalidated: %v", f.cache.invalidated)
	}
}

func TestPostService_CreatePost_WhitespaceNotPersisted(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	before, _ := f.posts.ListByUser(ctx, 1)
	_, err := f.svc.CreatePost(ctx, f.alice, " \t \n")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	after, _ := f.posts.ListByUser(ctx, 1)
	if len(after) != len(before) {
		t.Fatalf("post count changed: %d -> %d", len(before), len(after))
	}
	if len(f.rec.calls) != 0 {
		t.Fatalf("no activity expected")
	}
}

func TestPostService_CreatePost_UnknownActor(t *testing.T) {
	f := newPostFixture(t)
	_, err := f.svc.CreatePost(context.Background(), Identity{Email: "ghost@example.com"}, "hi")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPostService_OwnerCanEditAndDelete(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.alice, "hello")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	got, err := f.svc.GetOwnedPost(ctx, f.alice, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("GetOwnedPost: %+v, %v", got, err)
	}

	if err := f.svc.UpdatePost(ctx, f.alice, p.ID, "hello world"); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	stored, _ := f.posts.GetByID(ctx, p.ID)
	if stored.Content != "hello world" {
		t.Fatalf("edit not applied: %q", stored.Content)
	}

	if err := f.svc.DeletePost(ctx, f.alice, p.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if stored, _ := f.posts.GetByID(ctx, p.ID); stored != nil {
		t.Fatalf("post still present: %+v", stored)
	}

	want := []string{ActivityPostCreate, ActivityPostEdit, ActivityPostDelete}
	got2 := f.rec.types()
	if len(got2) != len(want) {
		t.Fatalf("activity: want %v, got %v", want, got2)
	}
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("activity: want %v, got %v", want, got2)
		}
	}
}

func TestPostService_NonOwnerIsForbidden(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	bobsPost, err := f.svc.CreatePost(ctx, f.bob, "bob's words")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	f.rec.calls = nil

	if _, err := f.svc.GetOwnedPost(ctx, f.alice, bobsPost.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("GetOwnedPost: expected ErrForbidden, got %v", err)
	}
	if err := f.svc.UpdatePost(ctx, f.alice, bobsPost.ID, "pwned"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("UpdatePost: expected ErrForbidden, got %v", err)
	}
	if err := f.svc.DeletePost(ctx, f.alice, bobsPost.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("DeletePost: expected ErrForbidden, got %v", err)
	}

	stored, _ := f.posts.GetByID(ctx, bobsPost.ID)
	if stored == nil || stored.Content != "bob's words" {
		t.Fatalf("bob's post changed: %+v", stored)
	}
	if len(f.rec.calls) != 0 {
		t.Fatalf("no activity expected, got %v", f.rec.types())
	}
}

func TestPostService_MissingPost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	if err := f.svc.UpdatePost(ctx, f.alice, 404, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdatePost: expected ErrNotFound, got %v", err)
	}
	if err := f.svc.DeletePost(ctx, f.alice, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeletePost: expected ErrNotFound, got %v", err)
	}
}

func TestPostService_UpdatePost_BlankContentKeepsPost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	p, _ := f.svc.CreatePost(ctx, f.alice, "keep me")
	if err := f.svc.UpdatePost(ctx, f.alice, p.ID, "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	stored, _ := f.posts.GetByID(ctx, p.ID)
	if stored.Content != "keep me" {
		t.Fatalf("content changed to %q", stored.Content)
	}
}

func TestPostService_StoreErrors(t *testing.T) {
	f := newPostFixture(t)
	f.posts.err = errors.New("disk full")

	if _, err := f.svc.CreatePost(context.Background(), f.alice, "x"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := f.svc.DeletePost(context.Background(), f.alice, 1); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

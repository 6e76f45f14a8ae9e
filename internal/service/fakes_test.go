package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"postboard/internal/models"
	"postboard/internal/repository"
)

// memUsers is an in-memory repository.UserRepo honoring the unique email/username indexes.
type memUsers struct {
	mu        sync.Mutex
	byID      map[int64]models.User
	nextID    int64
	err       error // returned by every call when set
	updateErr error // returned by UpdateProfile only
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return 0, repository.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return 0, repository.ErrDuplicateUsername
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt, u.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	m.byID[u.ID] = *u
	return u.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id int64, fullName, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FullName, u.Image = fullName, image
	m.byID[id] = u
	return nil
}

// seed stores a user directly and returns it.
func (m *memUsers) seed(username, email string) models.User {
	u := models.User{Username: username, Email: email, FullName: username, Image: models.DefaultImage}
	hash, _ := hashPassword("secret1")
	u.PasswordHash = hash
	_, _ = m.Create(context.Background(), &u)
	return u
}

// memPosts is an in-memory repository.PostRepo; owned writes match on id and user_id.
type memPosts struct {
	mu     sync.Mutex
	byID   map[int64]models.Post
	nextID int64
	err    error
	onList func() // runs before ListByUser reads
}

func newMemPosts() *memPosts { return &memPosts{byID: map[int64]models.Post{}} }

func (m *memPosts) Create(_ context.Context, userID int64, content string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	p := models.Post{ID: m.nextID, UserID: userID, Content: content, CreatedAt: time.Now().UTC()}
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return &p, nil
}

func (m *memPosts) GetByID(_ context.Context, id int64) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPosts) ListByUser(_ context.Context, userID int64) ([]models.Post, error) {
	if m.onList != nil {
		m.onList()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Post
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.byID[id]; ok && p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPosts) UpdateContent(_ context.Context, id, userID int64, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p, ok := m.byID[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	p.Content = content
	m.byID[id] = p
	return nil
}

func (m *memPosts) Delete(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p, ok := m.byID[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// fakeActivityRepo captures List inputs and appended events.
type fakeActivityRepo struct {
	appended  []models.ActivityEvent
	appendErr error

	gotUserID int64
	gotFrom   time.Time
	gotTo     time.Time
	gotType   string
	events    []models.ActivityEvent
	listErr   error
	calls     int
}

func (f *fakeActivityRepo) Append(_ context.Context, e models.ActivityEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeActivityRepo) List(_ context.Context, userID int64, from, to time.Time, typ string) ([]models.ActivityEvent, error) {
	f.calls++
	f.gotUserID, f.gotFrom, f.gotTo, f.gotType = userID, from, to, typ
	return f.events, f.listErr
}

type recordedActivity struct {
	userID int64
	typ    string
}

// fakeRecorder stands in for the activity log in mutating services.
type fakeRecorder struct {
	calls []recordedActivity
}

func (f *fakeRecorder) Record(_ context.Context, userID int64, typ, _ string, _ any) {
	f.calls = append(f.calls, recordedActivity{userID: userID, typ: typ})
}

func (f *fakeRecorder) types() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.typ)
	}
	return out
}

type fakePublisher struct {
	published []models.ActivityEvent
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, e models.ActivityEvent) error {
	f.published = append(f.published, e)
	return f.err
}

var errFakeStale = errors.New("stale generation")

// fakeCache is a map-backed ProfileCache with per-email generations.
type fakeCache struct {
	m           map[string]*models.User
	gens        map[string]int64
	invalidated []string
	sets        int
	stale       int
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: map[string]*models.User{}, gens: map[string]int64{}}
}

func (f *fakeCache) Get(_ context.Context, email string) (*models.User, error) {
	return f.m[email], nil
}

func (f *fakeCache) Generation(_ context.Context, email string) (int64, error) {
	return f.gens[email], nil
}

func (f *fakeCache) SetIfCurrent(_ context.Context, email string, gen int64, u *models.User) error {
	if f.gens[email] != gen {
		f.stale++
		return errFakeStale
	}
	f.sets++
	cp := *u
	f.m[email] = &cp
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, email string) error {
	f.invalidated = append(f.invalidated, email)
	f.gens[email]++
	delete(f.m, email)
	return nil
}

// fakeAvatars keeps saved bytes by name.
type fakeAvatars struct {
	saved   map[string][]byte
	deleted []string
	err     error
}

func newFakeAvatars() *fakeAvatars { return &fakeAvatars{saved: map[string][]byte{}} }

func (f *fakeAvatars) Save(_ context.Context, name string, r io.Reader, _ int64) error {
	if f.err != nil {
		return f.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.saved[name] = buf.Bytes()
	return nil
}

func (f *fakeAvatars) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	delete(f.saved, name)
	return nil
}

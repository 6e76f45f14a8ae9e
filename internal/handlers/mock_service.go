package handlers

import (
	"context"
	"io"
	"net/http"

	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpToken string
	signUpErr   error
	genToken    string
	genErr      error
	parseID     service.Identity
	parseErr    error

	lastSignUp      service.RegisterInput
	lastGenEmail    string
	lastGenPassword string
	lastParseToken  string
	genCalls        int
}

func (m *mockAuth) SignUp(_ context.Context, in service.RegisterInput) (string, error) {
	m.lastSignUp = in
	return m.signUpToken, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, email, password string) (string, error) {
	m.genCalls++
	m.lastGenEmail = email
	m.lastGenPassword = password
	return m.genToken, m.genErr
}
func (m *mockAuth) ParseToken(token string) (service.Identity, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockPosts struct {
	post      *models.Post
	createErr error
	getErr    error
	updateErr error
	deleteErr error

	lastID      service.Identity
	lastPostID  int64
	lastContent string
	deleteCalls int
	updateCalls int
}

func (m *mockPosts) CreatePost(_ context.Context, id service.Identity, content string) (*models.Post, error) {
	m.lastID, m.lastContent = id, content
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Post{ID: 1, Content: content}, nil
}
func (m *mockPosts) GetOwnedPost(_ context.Context, id service.Identity, postID int64) (*models.Post, error) {
	m.lastID, m.lastPostID = id, postID
	return m.post, m.getErr
}
func (m *mockPosts) UpdatePost(_ context.Context, id service.Identity, postID int64, content string) error {
	m.updateCalls++
	m.lastID, m.lastPostID, m.lastContent = id, postID, content
	return m.updateErr
}
func (m *mockPosts) DeletePost(_ context.Context, id service.Identity, postID int64) error {
	m.deleteCalls++
	m.lastID, m.lastPostID = id, postID
	return m.deleteErr
}

type mockProfile struct {
	user      *models.User
	meErr     error
	formErr   error
	updateErr error

	lastTarget    int64
	lastUpdate    service.ProfileUpdate
	uploadedBytes []byte
	uploadedName  string
	updateCalls   int
}

func (m *mockProfile) Me(context.Context, service.Identity) (*models.User, error) {
	return m.user, m.meErr
}
func (m *mockProfile) ProfileForm(_ context.Context, _ service.Identity, targetID int64) (*models.User, error) {
	m.lastTarget = targetID
	return m.user, m.formErr
}
func (m *mockProfile) UpdateProfile(_ context.Context, _ service.Identity, targetID int64, upd service.ProfileUpdate) (*models.User, error) {
	m.updateCalls++
	m.lastTarget, m.lastUpdate = targetID, upd
	if upd.Avatar != nil {
		// the multipart file is closed once the handler returns
		m.uploadedName = upd.Avatar.Filename
		m.uploadedBytes, _ = io.ReadAll(upd.Avatar.Body)
	}
	return m.user, m.updateErr
}

type mockActivity struct {
	resp       []models.ActivityEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockActivity) ListActivity(_ context.Context, _ service.Identity, f service.LogFilter) ([]models.ActivityEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

const testEmail = "alice@example.com"

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, Options{})
	return h.InitRoutes()
}

// signedIn is an auth mock that accepts any cookie as alice.
func signedIn() *mockAuth {
	return &mockAuth{parseID: service.Identity{Email: testEmail}}
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "valid"})
	return req
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAuth(t *testing.T) (*AuthService, *memUsers, *fakeRecorder) {
	t.Helper()
	tokens, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	users := newMemUsers()
	rec := &fakeRecorder{}
	return NewAuthService(users, tokens, rec), users, rec
}

func aliceForm() RegisterInput {
	return RegisterInput{Username: "alice", FullName: "Alice", Email: "alice@example.com", Password: "secret1"}
}

// --- SignUp tests ---

func TestAuthService_SignUp_SuccessHashesPasswordAndIssuesToken(t *testing.T) {
	svc, users, rec := newTestAuth(t)

	token, err := svc.SignUp(context.Background(), aliceForm())
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	id, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.Email != "alice@example.com" {
		t.Fatalf("token carries %q", id.Email)
	}

	u, _ := users.GetByEmail(context.Background(), "alice@example.com")
	if u == nil {
		t.Fatalf("user was not stored")
	}
	if u.PasswordHash == "secret1" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(u.PasswordHash, "secret1"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}
	if u.Image != "default.png" {
		t.Errorf("expected default image, got %q", u.Image)
	}
	if got := rec.types(); len(got) != 1 || got[0] != ActivityRegister {
		t.Errorf("expected one REGISTER event, got %v", got)
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, aliceForm()); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	before, _ := users.GetByEmail(ctx, "alice@example.com")

	dup := aliceForm()
	dup.Username = "alice2"
	dup.Email = "  ALICE@example.com "
	dup.FullName = "Someone Else"
	if _, err := svc.SignUp(ctx, dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	after, _ := users.GetByEmail(ctx, "alice@example.com")
	if after.ID != before.ID || after.FullName != before.FullName || after.PasswordHash != before.PasswordHash {
		t.Fatalf("first user changed: before=%+v after=%+v", before, after)
	}
}

func TestAuthService_SignUp_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, aliceForm()); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	dup := aliceForm()
	dup.Email = "other@example.com"
	dup.Username = "ALICE"
	if _, err := svc.SignUp(ctx, dup); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestAuthService_SignUp_ValidationStopsBeforeStore(t *testing.T) {
	svc, users, rec := newTestAuth(t)

	in := aliceForm()
	in.Password = "123"
	if _, err := svc.SignUp(context.Background(), in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(users.byID) != 0 {
		t.Fatalf("no user should be stored")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("no activity expected, got %v", rec.types())
	}
}

func TestAuthService_SignUp_RepoError(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	users.err = errors.New("db down")

	_, err := svc.SignUp(context.Background(), aliceForm())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

// --- GenerateToken tests ---

func TestAuthService_GenerateToken_Success(t *testing.T) {
	svc, _, rec := newTestAuth(t)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, aliceForm()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	token, err := svc.GenerateToken(ctx, " Alice@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	id, err := svc.ParseToken(token)
	if err != nil || id.Email != "alice@example.com" {
		t.Fatalf("unexpected identity %+v, err %v", id, err)
	}
	if !id.ExpiresAt.After(time.Now().Add(TokenTTL - time.Minute)) {
		t.Fatalf("expiry too early: %v", id.ExpiresAt)
	}
	if got := rec.types(); len(got) != 2 || got[1] != ActivityLogin {
		t.Fatalf("expected REGISTER then LOGIN, got %v", got)
	}
}

func TestAuthService_GenerateToken_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, aliceForm()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, errWrongPass := svc.GenerateToken(ctx, "alice@example.com", "wrong-password")
	_, errUnknown := svc.GenerateToken(ctx, "nobody@example.com", "secret1")

	if !errors.Is(errWrongPass, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errWrongPass, errUnknown)
	}
	if errWrongPass.Error() != errUnknown.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errWrongPass, errUnknown)
	}
}

func TestAuthService_GenerateToken_EmptyInput(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	if _, err := svc.GenerateToken(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_GenerateToken_RepoError(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	users.err = errors.New("db down")

	_, err := svc.GenerateToken(context.Background(), "john@example.com", "pw")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

// --- ParseToken tests ---

func TestAuthService_ParseToken_Malformed(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	if _, err := svc.ParseToken("not-a-jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := hashPassword("   "); err == nil {
		t.Fatalf("expected error for blank password")
	}
}

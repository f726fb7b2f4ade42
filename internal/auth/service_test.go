package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/runlog/internal/model"
	"github.com/hitoshi/runlog/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	createFn         func(ctx context.Context, user *model.User) error
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, session *model.Session) error
	findByIDFn      func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn    func(ctx context.Context, id string) error
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)

// --- ヘルパー ---

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func testConfig() ServiceConfig {
	return ServiceConfig{SessionMaxAge: 3600, BcryptCost: bcrypt.MinCost}
}

func hashOf(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	return string(h)
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Code != code {
		t.Errorf("code = %q, want %q", apiErr.Code, code)
	}
}

// --- Register ---

func TestRegister_Success_StoresBcryptHash(t *testing.T) {
	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "pw", Age: intPtr(30), Weight: floatPtr(70),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created != user {
		t.Fatal("expected user to be persisted")
	}
	if user.ID == "" {
		t.Error("expected generated ID")
	}
	if user.PasswordHash == "pw" {
		t.Error("password must not be stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if user.Age != 30 || user.Weight != 70 {
		t.Errorf("age/weight = %d/%v, want 30/70", user.Age, user.Weight)
	}
}

func TestRegister_MissingCredentials(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	for _, in := range []RegisterInput{
		{Username: "", Password: "pw", Age: intPtr(30), Weight: floatPtr(70)},
		{Username: "alice", Password: "", Age: intPtr(30), Weight: floatPtr(70)},
	} {
		_, err := svc.Register(context.Background(), in)
		assertAPIErrorCode(t, err, model.ErrCodeValidation)
	}
}

func TestRegister_MissingAgeOrWeight(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "pw", Weight: floatPtr(70)})
	assertAPIErrorCode(t, err, model.ErrCodeValidation)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "pw", Age: intPtr(30)})
	assertAPIErrorCode(t, err, model.ErrCodeValidation)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFn: func(_ context.Context, username string) (*model.User, error) {
			return &model.User{ID: "existing", Username: username}, nil
		},
		createFn: func(_ context.Context, _ *model.User) error {
			t.Fatal("Create should not be called")
			return nil
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "pw", Age: intPtr(30), Weight: floatPtr(70),
	})
	assertAPIErrorCode(t, err, model.ErrCodeUsernameTaken)
}

// 事前チェック後に一意制約違反になった場合もUSERNAME_TAKENになる
func TestRegister_UniqueViolationAtInsert(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return repository.ErrUsernameTaken
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "pw", Age: intPtr(30), Weight: floatPtr(70),
	})
	assertAPIErrorCode(t, err, model.ErrCodeUsernameTaken)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: strings.Repeat("x", 73), Age: intPtr(30), Weight: floatPtr(70),
	})
	assertAPIErrorCode(t, err, model.ErrCodeValidation)
}

func TestRegister_RepositoryError_IsWrapped(t *testing.T) {
	dbErr := errors.New("db down")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, dbErr
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "pw", Age: intPtr(30), Weight: floatPtr(70),
	})
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
}

// --- Login ---

func TestLogin_Success_CreatesSession(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	hash := hashOf(t, "pw")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(_ context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return &model.User{ID: "user-1", Username: "alice", PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	var saved *model.Session
	sessionRepo := &mockSessionRepo{
		createFn: func(_ context.Context, session *model.Session) error {
			saved = session
			return nil
		},
	}
	svc := NewService(userRepo, sessionRepo, testConfig())
	svc.now = func() time.Time { return fixed }

	session, err := svc.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != session {
		t.Fatal("expected session to be persisted")
	}
	if session.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", session.UserID, "user-1")
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64", len(session.ID))
	}
	if !session.ExpiresAt.Equal(fixed.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, fixed.Add(time.Hour))
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash := hashOf(t, "pw")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(_ context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return &model.User{ID: "user-1", Username: "alice", PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(_ context.Context, _ *model.Session) error {
			t.Fatal("session should not be created")
			return nil
		},
	}
	svc := NewService(userRepo, sessionRepo, testConfig())

	tests := []struct {
		name, username, password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "pw"},
		{"case sensitive username", "Alice", "pw"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.username, tt.password)
			assertAPIErrorCode(t, err, model.ErrCodeInvalidCredentials)
		})
	}
}

// --- Logout ---

func TestLogout_DeletesSession(t *testing.T) {
	var deleted string
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "sess-1" {
		t.Errorf("deleted = %q, want %q", deleted, "sess-1")
	}
}

func TestLogout_EmptySessionID_ReturnsError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())
	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

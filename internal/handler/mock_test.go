package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/runlog/internal/auth"
	"github.com/hitoshi/runlog/internal/middleware"
	"github.com/hitoshi/runlog/internal/model"
	"github.com/hitoshi/runlog/internal/workout"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn func(ctx context.Context, in auth.RegisterInput) (*model.User, error)
	loginFn    func(ctx context.Context, username, password string) (*model.Session, error)
	logoutFn   func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return &model.User{ID: "user-1", Username: in.Username}, nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

type mockWorkoutService struct {
	addFn          func(ctx context.Context, userID string, in workout.AddInput) (*model.Workout, error)
	listFn         func(ctx context.Context, userID, startDate, endDate string) ([]model.WorkoutWithOwner, error)
	weeklyStatsFn  func(ctx context.Context, userID string) (*workout.Stats, error)
	monthlyStatsFn func(ctx context.Context, userID string) (*workout.Stats, error)
}

func (m *mockWorkoutService) Add(ctx context.Context, userID string, in workout.AddInput) (*model.Workout, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockWorkoutService) List(ctx context.Context, userID, startDate, endDate string) ([]model.WorkoutWithOwner, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, startDate, endDate)
	}
	return []model.WorkoutWithOwner{}, nil
}

func (m *mockWorkoutService) WeeklyStats(ctx context.Context, userID string) (*workout.Stats, error) {
	if m.weeklyStatsFn != nil {
		return m.weeklyStatsFn(ctx, userID)
	}
	return &workout.Stats{}, nil
}

func (m *mockWorkoutService) MonthlyStats(ctx context.Context, userID string) (*workout.Stats, error) {
	if m.monthlyStatsFn != nil {
		return m.monthlyStatsFn(ctx, userID)
	}
	return &workout.Stats{}, nil
}

type mockRecipeService struct {
	suggestFn func(ctx context.Context, userID string) (*model.RecipeSuggestion, error)
}

func (m *mockRecipeService) Suggest(ctx context.Context, userID string) (*model.RecipeSuggestion, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, userID)
	}
	return nil, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(_ context.Context) error {
	return m.err
}

// prefixSigner は "signed:" を付けるだけの署名器。
type prefixSigner struct{}

func (prefixSigner) Sign(sessionID string) string { return "signed:" + sessionID }

func (prefixSigner) Verify(value string) (string, bool) {
	id, ok := strings.CutPrefix(value, "signed:")
	return id, ok && id != ""
}

// --- ヘルパー ---

func withUser(ctx context.Context, userID, sessionID string) context.Context {
	ctx = middleware.ContextWithUserID(ctx, userID)
	return middleware.ContextWithSessionID(ctx, sessionID)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }

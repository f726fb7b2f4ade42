package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/runlog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CookieVerifier    middleware.CookieVerifier
	CORSAllowedOrigin string

	// 認証
	AuthService  AuthServiceInterface
	CookieSigner CookieSigner
	AuthConfig   AuthHandlerConfig

	// ワークアウト・レシピ
	WorkoutService WorkoutServiceInterface
	RecipeService  RecipeServiceInterface

	// 運用
	DB             Pinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → (保護ルートのみ) Session
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.CookieSigner, deps.AuthConfig)
	workoutHandler := NewWorkoutHandler(deps.WorkoutService)
	recipeHandler := NewRecipeHandler(deps.RecipeService)

	// --- 認証不要のルート ---
	r.Get("/", Home)
	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.CookieVerifier))

		r.Post("/logout", authHandler.Logout)
		r.Post("/workouts", workoutHandler.AddWorkout)
		r.Get("/listed_workouts", workoutHandler.ListWorkouts)
		r.Get("/stats/week", workoutHandler.WeeklyStats)
		r.Get("/stats/month", workoutHandler.MonthlyStats)
		r.Get("/recipes", recipeHandler.Suggest)
	})

	return r
}

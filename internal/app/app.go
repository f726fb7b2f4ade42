// Package app はアプリケーションの初期化と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/runlog/internal/auth"
	"github.com/hitoshi/runlog/internal/config"
	"github.com/hitoshi/runlog/internal/database"
	"github.com/hitoshi/runlog/internal/handler"
	"github.com/hitoshi/runlog/internal/logger"
	"github.com/hitoshi/runlog/internal/metrics"
	"github.com/hitoshi/runlog/internal/recipe"
	"github.com/hitoshi/runlog/internal/repository"
	"github.com/hitoshi/runlog/internal/security"
	"github.com/hitoshi/runlog/internal/spoonacular"
	"github.com/hitoshi/runlog/internal/worker/cleanup"
	"github.com/hitoshi/runlog/internal/workout"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再構成する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandCleanup:
		return runCleanup(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、マイグレーションを適用してから全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runMigrate(cfg); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	router, err := NewServerHandler(cfg, db, registry)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RecipeTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// SIGINTまたはSIGTERMでctxがキャンセルされる
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// NewServerHandler はDB接続とメトリクスレジストリからリポジトリ、サービス、ハンドラーを組み立て、
// ミドルウェア適用済みのhttp.Handlerを返す。
func NewServerHandler(cfg *config.Config, db *sql.DB, registry *prometheus.Registry) (http.Handler, error) {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	workoutRepo := repository.NewPostgresWorkoutRepo(db)

	// 2. メトリクス
	collector := metrics.NewCollector(registry)

	// 3. セキュリティサービスの初期化
	guard := security.NewOutboundGuard()
	if err := guard.ValidateBaseURL(cfg.SpoonacularBaseURL); err != nil {
		return nil, fmt.Errorf("invalid SPOONACULAR_BASE_URL: %w", err)
	}
	sanitizer := security.NewTextSanitizer()
	signer := auth.NewSigner(cfg.SecretKey)

	// 4. ドメインサービスの初期化
	authService := auth.NewService(userRepo, sessionRepo, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
	})
	workoutService := workout.NewService(workoutRepo, userRepo, collector)

	recipeClient := spoonacular.NewClient(
		guard.NewClient(cfg.RecipeTimeout),
		slog.Default(),
		collector,
		spoonacular.Config{
			BaseURL:         cfg.SpoonacularBaseURL,
			APIKey:          cfg.SpoonacularAPIKey,
			MaxResponseSize: cfg.RecipeMaxResponseSize,
		},
	)
	recipeService := recipe.NewService(workoutRepo, recipeClient, sanitizer, collector)

	// 5. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		SessionFinder:     sessionRepo,
		CookieVerifier:    signer,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		AuthService:  authService,
		CookieSigner: signer,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		WorkoutService: workoutService,
		RecipeService:  recipeService,

		DB:             db,
		MetricsHandler: metrics.Handler(registry),
	}

	return handler.NewRouter(deps), nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runCleanup は期限切れセッションを1回削除して終了する。
// cronなど外部スケジューラからの定期実行を想定する。
func runCleanup(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	collector := metrics.NewCollector(prometheus.NewRegistry())
	job := cleanup.NewCleanupJob(repository.NewPostgresSessionRepo(db), collector, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := job.Run(ctx); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

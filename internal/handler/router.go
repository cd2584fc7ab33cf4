package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/webclip/internal/middleware"
	"github.com/hitoshi/webclip/internal/view"
)

// HealthChecker はヘルスチェック対象への疎通確認インターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder middleware.SessionFinder
	RateLimiter   *middleware.RateLimiter
	CSRFConfig    middleware.CSRFConfig
	Logger        *slog.Logger

	// 運用
	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 本文抽出
	ExtractService ExtractServiceInterface
	ArticleStore   ArticleSessionStore

	// ビュー
	Renderer *view.Renderer

	// 運用
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CSRF
//
// 認証が必要なルートにはさらに Session → RateLimit(General) を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.AuthConfig)
	extractHandler := NewExtractHandler(deps.ExtractService, deps.ArticleStore, deps.Renderer)

	// --- 認証不要のルート ---

	r.Get("/", authHandler.ShowLogin)
	r.Get("/login", authHandler.ShowLogin)
	r.Get("/register", authHandler.ShowRegister)
	r.Get("/forgot-password", authHandler.ShowForgotPassword)

	r.Post("/login", authHandler.Login)
	r.Post("/register", authHandler.Register)
	r.Post("/forgot-password", authHandler.ForgotPassword)
	r.Post("/logout", authHandler.Logout)

	// OAuthフロー
	r.Get("/auth/google", authHandler.GoogleLogin)
	r.Get("/auth/google/logged-in", authHandler.GoogleCallback)

	// 運用エンドポイント
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/logged-in", authHandler.ShowLoggedIn)
		r.Get("/download-json", extractHandler.DownloadJSON)

		// POST /extract - 外部フェッチを伴うため専用レート制限を追加
		r.With(deps.RateLimiter.ExtractMiddleware()).Post("/extract", extractHandler.Extract)
	})

	return r
}

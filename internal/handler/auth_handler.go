// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/webclip/internal/middleware"
	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/view"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	RegisterLocal(ctx context.Context, email, password, confirm string) error
	LoginLocal(ctx context.Context, email, password string) (*model.Session, error)
	ResetPassword(ctx context.Context, email, newPassword, confirm string) error
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
// ローカル認証フォームとGoogle OAuthフローの両方を扱う。
type AuthHandler struct {
	service  AuthServiceInterface
	renderer *view.Renderer
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, renderer *view.Renderer, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		renderer: renderer,
		config:   config,
	}
}

// ShowLogin はログインページを表示する。
// GET / および GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, "login.html", view.Data{CSRFToken: middleware.TokenFromRequest(r)})
}

// ShowRegister は登録ページを表示する。
// GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, "register.html", view.Data{CSRFToken: middleware.TokenFromRequest(r)})
}

// ShowForgotPassword はパスワード再設定ページを表示する。
// GET /forgot-password
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, "forgotpassword.html", view.Data{CSRFToken: middleware.TokenFromRequest(r)})
}

// ShowLoggedIn は認証済みトップページを表示する。
// GET /logged-in
func (h *AuthHandler) ShowLoggedIn(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, "index.html", view.Data{CSRFToken: middleware.TokenFromRequest(r)})
}

// Login はローカル認証を行う。
// POST /login
// 成功時は302で/logged-inへ。認証失敗は401でログインページを再表示する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	session, err := h.service.LoginLocal(r.Context(), email, password)
	if err != nil {
		h.renderAuthError(w, r, "login.html", err)
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/logged-in", http.StatusFound)
}

// Register はローカルアカウントを登録する。
// POST /register
// 成功時は302で/loginへ。重複メールや確認入力不一致は401で再表示する。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm")

	if err := h.service.RegisterLocal(r.Context(), email, password, confirm); err != nil {
		h.renderAuthError(w, r, "register.html", err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// ForgotPassword はパスワードを再設定する。
// POST /forgot-password
// 成功時は302で/loginへ。未登録メールや確認入力不一致は401で再表示する。
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm")

	if err := h.service.ResetPassword(r.Context(), email, password, confirm); err != nil {
		h.renderAuthError(w, r, "forgotpassword.html", err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// GoogleLogin はGoogle OAuthフローを開始する。
// GET /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback はOAuthコールバックを処理する。
// GET /auth/google/logged-in?code=xxx&state=yyy
// 成功時は/logged-in、失敗時は/loginへリダイレクトする。
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch", slog.String("query_state", state))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	// 3. 認証処理。失敗してもフェイルオープンせずログインへ戻す。
	session, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/logged-in", http.StatusFound)
}

// Logout はセッションを破棄してログインページへ戻す。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
	}

	// セッションCookieを削除
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/login", http.StatusFound)
}

// setSessionCookie はHTTP OnlyのセッションCookieを設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// renderAuthError は認証エラーをフォームページ上に再表示する。
// APIErrorのメッセージをそのまま表示し、ステータスコードをマッピングする。
func (h *AuthHandler) renderAuthError(w http.ResponseWriter, r *http.Request, template string, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("auth handler internal error", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(mapAPIErrorToHTTPStatus(apiErr))
	if renderErr := h.renderer.Render(w, template, view.Data{
		CSRFToken: middleware.TokenFromRequest(r),
		Error:     apiErr.Message,
	}); renderErr != nil {
		slog.Error("failed to render auth error page",
			slog.String("template", template),
			slog.String("error", renderErr.Error()),
		)
	}
}

// generateState はOAuth state用の乱数文字列を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

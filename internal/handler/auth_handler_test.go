package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/view"
)

// mockAuthService は関数フィールドで振る舞いを差し替えるAuthServiceInterfaceモック。
type mockAuthService struct {
	registerLocalFn  func(ctx context.Context, email, password, confirm string) error
	loginLocalFn     func(ctx context.Context, email, password string) (*model.Session, error)
	resetPasswordFn  func(ctx context.Context, email, newPassword, confirm string) error
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) RegisterLocal(ctx context.Context, email, password, confirm string) error {
	return m.registerLocalFn(ctx, email, password, confirm)
}

func (m *mockAuthService) LoginLocal(ctx context.Context, email, password string) (*model.Session, error) {
	return m.loginLocalFn(ctx, email, password)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, email, newPassword, confirm string) error {
	return m.resetPasswordFn(ctx, email, newPassword, confirm)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	return m.handleCallbackFn(ctx, code)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func testRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}
	return r
}

func newTestAuthHandler(t *testing.T, service AuthServiceInterface) *AuthHandler {
	t.Helper()
	return NewAuthHandler(service, testRenderer(t), AuthHandlerConfig{SessionMaxAge: 3600})
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookieValue(res *http.Response) string {
	for _, c := range res.Cookies() {
		if c.Name == "session_id" {
			return c.Value
		}
	}
	return ""
}

// TestShowLogin_RendersForm はログインページが表示されることを検証する。
func TestShowLogin_RendersForm(t *testing.T) {
	h := newTestAuthHandler(t, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()

	h.ShowLogin(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `action="/login"`) {
		t.Error("login form should be rendered")
	}
}

// TestLogin_Success は認証成功で/logged-inへ302し、セッションCookieが付くことを検証する。
func TestLogin_Success(t *testing.T) {
	service := &mockAuthService{
		loginLocalFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			if email != "alice@example.com" || password != "secret password" {
				t.Errorf("credentials = (%q, %q), want form values", email, password)
			}
			return &model.Session{ID: "sess-1", UserID: "user-1"}, nil
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{"email": {"alice@example.com"}, "password": {"secret password"}}
	w := httptest.NewRecorder()

	h.Login(w, postForm("/login", form))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/logged-in" {
		t.Errorf("Location = %q, want /logged-in", loc)
	}
	if sessionCookieValue(w.Result()) != "sess-1" {
		t.Error("session cookie should be set to the session ID")
	}
}

// TestLogin_UnknownEmail は未知メールで401とメッセージ表示を検証する。
func TestLogin_UnknownEmail(t *testing.T) {
	service := &mockAuthService{
		loginLocalFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{"email": {"ghost@example.com"}, "password": {"whatever"}}
	w := httptest.NewRecorder()

	h.Login(w, postForm("/login", form))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Check for username and password!") {
		t.Error("error message should be shown on the login page")
	}
}

// TestLogin_BadPassword は誤パスワードで401が返り、Cookieが付かないことを検証する。
func TestLogin_BadPassword(t *testing.T) {
	service := &mockAuthService{
		loginLocalFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewBadPasswordError()
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{"email": {"alice@example.com"}, "password": {"wrong"}}
	w := httptest.NewRecorder()

	h.Login(w, postForm("/login", form))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if sessionCookieValue(w.Result()) != "" {
		t.Error("no session cookie should be set on failed login")
	}
}

// TestRegister_Success は登録成功で/loginへ302することを検証する。
func TestRegister_Success(t *testing.T) {
	service := &mockAuthService{
		registerLocalFn: func(ctx context.Context, email, password, confirm string) error {
			return nil
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{
		"email":    {"new@example.com"},
		"password": {"a fresh password"},
		"confirm":  {"a fresh password"},
	}
	w := httptest.NewRecorder()

	h.Register(w, postForm("/register", form))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

// TestRegister_DuplicateEmail は重複メールで401とメッセージ表示を検証する。
func TestRegister_DuplicateEmail(t *testing.T) {
	service := &mockAuthService{
		registerLocalFn: func(ctx context.Context, email, password, confirm string) error {
			return model.NewDuplicateEmailError()
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{
		"email":    {"taken@example.com"},
		"password": {"pass"},
		"confirm":  {"pass"},
	}
	w := httptest.NewRecorder()

	h.Register(w, postForm("/register", form))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email already exists!") {
		t.Error("duplicate email message should be shown")
	}
}

// TestForgotPassword_Mismatch は確認入力不一致で401とメッセージ表示を検証する。
func TestForgotPassword_Mismatch(t *testing.T) {
	service := &mockAuthService{
		resetPasswordFn: func(ctx context.Context, email, newPassword, confirm string) error {
			return model.NewPasswordMismatchError()
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{
		"email":    {"alice@example.com"},
		"password": {"one"},
		"confirm":  {"two"},
	}
	w := httptest.NewRecorder()

	h.ForgotPassword(w, postForm("/forgot-password", form))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Password and confirmed password do not match!") {
		t.Error("mismatch message should be shown")
	}
}

// TestGoogleLogin_RedirectsWithState はstate Cookieを設定してプロバイダへリダイレクトすることを検証する。
func TestGoogleLogin_RedirectsWithState(t *testing.T) {
	h := newTestAuthHandler(t, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}

	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("oauth_state cookie should be set")
	}
	if loc := w.Header().Get("Location"); !strings.Contains(loc, "state="+state) {
		t.Errorf("Location = %q, should carry the state parameter", loc)
	}
}

// TestGoogleCallback_Success はコールバック成功で/logged-inへ302することを検証する。
func TestGoogleCallback_Success(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want auth-code", code)
			}
			return &model.Session{ID: "sess-oauth", UserID: "user-1"}, nil
		},
	}
	h := newTestAuthHandler(t, service)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/logged-in?code=auth-code&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "xyz"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/logged-in" {
		t.Errorf("Location = %q, want /logged-in", loc)
	}
	if sessionCookieValue(w.Result()) != "sess-oauth" {
		t.Error("session cookie should be set after oauth login")
	}
}

// TestGoogleCallback_StateMismatch はstate不一致で/loginへ戻ることを検証する。
func TestGoogleCallback_StateMismatch(t *testing.T) {
	h := newTestAuthHandler(t, &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			t.Error("HandleCallback should not be called on state mismatch")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/logged-in?code=auth-code&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "xyz"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

// TestGoogleCallback_ProviderFailure はプロバイダ失敗で/loginへ戻ることを検証する。
func TestGoogleCallback_ProviderFailure(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			return nil, model.NewProviderError("token exchange failed")
		},
	}
	h := newTestAuthHandler(t, service)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/logged-in?code=bad&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "xyz"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if sessionCookieValue(w.Result()) != "" {
		t.Error("no session cookie should be set on provider failure")
	}
}

// TestLogout_DestroysSessionAndCookie はログアウトでセッション破棄とCookie削除を検証する。
func TestLogout_DestroysSessionAndCookie(t *testing.T) {
	var loggedOut string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := newTestAuthHandler(t, service)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if loggedOut != "sess-1" {
		t.Errorf("logged out session = %q, want sess-1", loggedOut)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie should be expired on logout")
	}
}

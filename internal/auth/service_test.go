package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/session"
)

// --- モック定義 ---

// fakeUserRepo はマップを使ったUserRepositoryのテスト用実装。
type fakeUserRepo struct {
	users   map[string]*model.User // email -> user
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, ok := r.users[user.Email]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint: %s", user.Email)
	}
	c := *user
	r.users[user.Email] = &c
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	u, ok := r.users[email]
	if !ok {
		return fmt.Errorf("user not found: %s", email)
	}
	u.PasswordHash = passwordHash
	return nil
}

// mockOAuthProvider は関数フィールドで振る舞いを差し替えるOAuthProviderモック。
type mockOAuthProvider struct {
	getLoginURLFn  func(state string) string
	exchangeCodeFn func(ctx context.Context, code string) (*OAuthUserInfo, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return nil, nil
}

func newTestService(t *testing.T, repo *fakeUserRepo, provider OAuthProvider) *Service {
	t.Helper()
	store := session.NewMemoryStore(time.Hour, session.WithCleanupInterval(time.Hour))
	t.Cleanup(store.Stop)
	if provider == nil {
		provider = &mockOAuthProvider{}
	}
	return NewService(repo, store, provider)
}

// --- テスト ---

func TestRegisterLocal_ThenLoginLocal_Succeeds(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "alice@example.com", "correct horse battery", "correct horse battery"); err != nil {
		t.Fatalf("RegisterLocal returned error: %v", err)
	}

	sess, err := svc.LoginLocal(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("LoginLocal returned error: %v", err)
	}
	if sess == nil || sess.ID == "" {
		t.Fatal("expected a session after successful login")
	}
}

func TestRegisterLocal_StoredPasswordIsNotPlaintext(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)

	if err := svc.RegisterLocal(context.Background(), "alice@example.com", "hunter2secret", "hunter2secret"); err != nil {
		t.Fatalf("RegisterLocal returned error: %v", err)
	}

	stored := repo.users["alice@example.com"].PasswordHash
	if stored == "hunter2secret" {
		t.Error("stored password must never equal the plaintext")
	}
	if stored == "" {
		t.Error("stored password hash must not be empty")
	}
}

func TestRegisterLocal_DuplicateEmail_ReturnsDuplicateError(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "alice@example.com", "first password!", "first password!"); err != nil {
		t.Fatalf("first RegisterLocal returned error: %v", err)
	}

	err := svc.RegisterLocal(ctx, "alice@example.com", "another password", "another password")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateEmail {
		t.Errorf("second register err = %v, want code %s", err, model.ErrCodeDuplicateEmail)
	}
}

func TestRegisterLocal_PasswordMismatch_ReturnsMismatchError(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)

	err := svc.RegisterLocal(context.Background(), "bob@example.com", "password one", "password two")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePasswordMismatch {
		t.Errorf("err = %v, want code %s", err, model.ErrCodePasswordMismatch)
	}
	if _, ok := repo.users["bob@example.com"]; ok {
		t.Error("no user row should be created on password mismatch")
	}
}

func TestLoginLocal_UnknownEmail_ReturnsNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)

	_, err := svc.LoginLocal(context.Background(), "ghost@example.com", "whatever pass")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("err = %v, want code %s", err, model.ErrCodeUserNotFound)
	}
}

func TestLoginLocal_AlteredPassword_Fails(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "alice@example.com", "sensitive password", "sensitive password"); err != nil {
		t.Fatalf("RegisterLocal returned error: %v", err)
	}

	_, err := svc.LoginLocal(ctx, "alice@example.com", "sensitive passworD")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeBadPassword {
		t.Errorf("err = %v, want code %s", err, model.ErrCodeBadPassword)
	}
}

func TestLoginLocal_OAuthOnlyAccount_NeverAuthenticates(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["oauth@example.com"] = &model.User{
		ID:           "user-oauth",
		Email:        "oauth@example.com",
		PasswordHash: model.PasswordSentinelGoogle,
	}
	svc := newTestService(t, repo, nil)

	// 番兵値そのものをパスワードとして送っても認証されないこと
	_, err := svc.LoginLocal(context.Background(), "oauth@example.com", model.PasswordSentinelGoogle)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeBadPassword {
		t.Errorf("err = %v, want code %s", err, model.ErrCodeBadPassword)
	}
}

func TestResetPassword_UnknownEmail_ReturnsNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)

	err := svc.ResetPassword(context.Background(), "ghost@example.com", "new password!", "new password!")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("err = %v, want code %s", err, model.ErrCodeUserNotFound)
	}
}

func TestResetPassword_OverwritesHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "alice@example.com", "old password!!", "old password!!"); err != nil {
		t.Fatalf("RegisterLocal returned error: %v", err)
	}
	oldHash := repo.users["alice@example.com"].PasswordHash

	if err := svc.ResetPassword(ctx, "alice@example.com", "new password!!", "new password!!"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if repo.users["alice@example.com"].PasswordHash == oldHash {
		t.Error("password hash should be overwritten by reset")
	}

	if _, err := svc.LoginLocal(ctx, "alice@example.com", "new password!!"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, err := svc.LoginLocal(ctx, "alice@example.com", "old password!!"); err == nil {
		t.Error("login with old password should fail after reset")
	}
}

func TestHandleCallback_NewUser_CreatedWithSentinelPassword(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{
				ProviderUserID: "google-sub-1",
				Email:          "new@example.com",
				Provider:       "google",
			}, nil
		},
	}
	svc := newTestService(t, repo, provider)

	sess, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}
	if sess == nil || sess.UserID == "" {
		t.Fatal("expected session bound to the new user")
	}

	created := repo.users["new@example.com"]
	if created == nil {
		t.Fatal("expected user row to be created on first oauth login")
	}
	if created.PasswordHash != model.PasswordSentinelGoogle {
		t.Errorf("PasswordHash = %q, want sentinel %q", created.PasswordHash, model.PasswordSentinelGoogle)
	}
}

func TestHandleCallback_ExistingUser_Reused(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["known@example.com"] = &model.User{
		ID:           "user-known",
		Email:        "known@example.com",
		PasswordHash: model.PasswordSentinelGoogle,
	}
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{ProviderUserID: "sub", Email: "known@example.com", Provider: "google"}, nil
		},
	}
	svc := newTestService(t, repo, provider)

	sess, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}
	if sess.UserID != "user-known" {
		t.Errorf("UserID = %q, want %q", sess.UserID, "user-known")
	}
	if len(repo.users) != 1 {
		t.Errorf("no new user should be created, have %d users", len(repo.users))
	}
}

func TestHandleCallback_ProviderFailure_ReturnsProviderError(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return nil, errors.New("token endpoint unreachable")
		},
	}
	svc := newTestService(t, repo, provider)

	_, err := svc.HandleCallback(context.Background(), "auth-code")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProviderError {
		t.Errorf("err = %v, want code %s", err, model.ErrCodeProviderError)
	}
	if len(repo.users) != 0 {
		t.Error("provider failure must not create a user")
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	repo := newFakeUserRepo()
	store := session.NewMemoryStore(time.Hour, session.WithCleanupInterval(time.Hour))
	t.Cleanup(store.Stop)
	svc := NewService(repo, store, &mockOAuthProvider{})
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "alice@example.com", "some password!", "some password!"); err != nil {
		t.Fatalf("RegisterLocal returned error: %v", err)
	}
	sess, err := svc.LoginLocal(ctx, "alice@example.com", "some password!")
	if err != nil {
		t.Fatalf("LoginLocal returned error: %v", err)
	}

	if err := svc.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	found, _ := store.FindByID(ctx, sess.ID)
	if found != nil {
		t.Error("session should be destroyed after logout")
	}
}

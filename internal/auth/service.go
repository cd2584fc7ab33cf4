package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/repository"
	"github.com/hitoshi/webclip/internal/session"
)

// Service は認証に関するビジネスロジックを提供する。
// ローカル認証とGoogle OAuthの2戦略を束ね、成功時にセッションを発行する。
type Service struct {
	users    repository.UserRepository
	sessions session.Store
	local    Strategy
	google   Strategy
	provider OAuthProvider
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	sessions session.Store,
	provider OAuthProvider,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		local:    NewLocalStrategy(users),
		google:   NewGoogleStrategy(provider, users),
		provider: provider,
	}
}

// RegisterLocal はローカルアカウントを登録する。
// 登録済みメールはDUPLICATE_EMAIL、確認入力の不一致はPASSWORD_MISMATCHを返す。
// パスワードはコスト12のbcryptでハッシュ化して保存する。
func (s *Service) RegisterLocal(ctx context.Context, email, password, confirm string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return model.NewDuplicateEmailError()
	}

	if password != confirm {
		return model.NewPasswordMismatchError()
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// メールの一意性は最終的にusersテーブルのUNIQUE制約が保証する。
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("local user registered", slog.String("user_id", user.ID))
	return nil
}

// LoginLocal はローカル認証を行い、成功時にセッションを発行する。
func (s *Service) LoginLocal(ctx context.Context, email, password string) (*model.Session, error) {
	userID, err := s.local.Authenticate(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("local user logged in", slog.String("user_id", userID))
	return sess, nil
}

// ResetPassword は保存済みパスワードハッシュを新しいものに上書きする。
// 未登録メールはUSER_NOT_FOUND、確認入力の不一致はPASSWORD_MISMATCHを返す。
func (s *Service) ResetPassword(ctx context.Context, email, newPassword, confirm string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if existing == nil {
		return model.NewUnknownEmailError()
	}

	if newPassword != confirm {
		return model.NewPasswordMismatchError()
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password reset", slog.String("user_id", existing.ID))
	return nil
}

// GetLoginURL はGoogle OAuthの認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.provider.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	userID, err := s.google.Authenticate(ctx, Credentials{Code: code})
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

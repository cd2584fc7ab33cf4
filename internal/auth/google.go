package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/repository"
)

// GoogleStrategy はGoogle OAuth2による認証戦略。
// 初回ログイン時は番兵値パスワードを持つユーザーを作成する。
type GoogleStrategy struct {
	provider OAuthProvider
	users    repository.UserRepository
}

// NewGoogleStrategy はGoogleStrategyを生成する。
func NewGoogleStrategy(provider OAuthProvider, users repository.UserRepository) *GoogleStrategy {
	return &GoogleStrategy{
		provider: provider,
		users:    users,
	}
}

// Authenticate は認可コードをプロバイダーで検証し、プロフィールの
// メールアドレスでユーザーを特定する。未登録の場合は番兵値パスワード
// （OAuth専用を示す）付きのユーザーを作成する。
// プロバイダー側の失敗はPROVIDER_ERRORとして伝搬し、決して認証成功に
// 倒れることはない。
func (s *GoogleStrategy) Authenticate(ctx context.Context, cred Credentials) (string, error) {
	profile, err := s.provider.ExchangeCode(ctx, cred.Code)
	if err != nil {
		slog.Error("oauth code exchange failed", slog.String("error", err.Error()))
		return "", model.NewProviderError(err.Error())
	}

	user, err := s.users.FindByEmail(ctx, profile.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if user != nil {
		slog.Info("existing user logged in via oauth",
			slog.String("user_id", user.ID),
			slog.String("provider", profile.Provider),
		)
		return user.ID, nil
	}

	now := time.Now()
	newUser := &model.User{
		ID:           uuid.New().String(),
		Email:        profile.Email,
		PasswordHash: model.PasswordSentinelGoogle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		return "", fmt.Errorf("failed to create oauth user: %w", err)
	}

	slog.Info("new user created via oauth",
		slog.String("user_id", newUser.ID),
		slog.String("provider", profile.Provider),
	)

	return newUser.ID, nil
}

// compile-time interface check
var _ Strategy = (*GoogleStrategy)(nil)

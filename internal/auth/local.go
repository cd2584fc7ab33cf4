package auth

import (
	"context"
	"fmt"

	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/repository"
)

// LocalStrategy はメールアドレスとパスワードによるローカル認証戦略。
type LocalStrategy struct {
	users repository.UserRepository
}

// NewLocalStrategy はLocalStrategyを生成する。
func NewLocalStrategy(users repository.UserRepository) *LocalStrategy {
	return &LocalStrategy{users: users}
}

// Authenticate はメールアドレスとパスワードでユーザーを認証する。
// 未登録メールはUSER_NOT_FOUND、ハッシュ照合失敗はBAD_PASSWORDを返す。
// OAuth専用アカウント（番兵値パスワード）はローカル認証では常に照合に失敗する。
func (s *LocalStrategy) Authenticate(ctx context.Context, cred Credentials) (string, error) {
	user, err := s.users.FindByEmail(ctx, cred.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", model.NewUserNotFoundError()
	}

	if !checkPassword(cred.Password, user.PasswordHash) {
		return "", model.NewBadPasswordError()
	}

	return user.ID, nil
}

// compile-time interface check
var _ Strategy = (*LocalStrategy)(nil)

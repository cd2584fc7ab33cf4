// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/webclip/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// メールアドレスは保存時の表記のまま大文字小文字を区別して照合する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスの一意性はDB制約で保証され、
	// 重複時はエラーを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword は指定メールアドレスのユーザーのパスワードハッシュを上書きする。
	// 該当ユーザーが存在しない場合はエラーを返す。
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

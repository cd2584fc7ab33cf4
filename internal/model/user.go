// Package model はドメインモデルを定義する。
package model

import "time"

// PasswordSentinelGoogle はOAuth専用アカウントを示すパスワード列の番兵値。
// bcryptダイジェストは必ず "$2" で始まるため、この値に対するローカルログインの
// ハッシュ照合が成功することはない。
const PasswordSentinelGoogle = "google"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptダイジェスト、またはOAuth専用アカウントを示す番兵値を保持する。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOAuthOnly はローカルパスワードを持たないOAuth専用アカウントかを返す。
func (u *User) IsOAuthOnly() bool {
	return u.PasswordHash == PasswordSentinelGoogle
}

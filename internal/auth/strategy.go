// Package auth はローカル認証、Google OAuth認証フロー、セッション発行を提供する。
package auth

import "context"

// Credentials は認証戦略への入力を表す。
// ローカル認証はEmail/Passwordを、OAuth認証はCodeを使用する。
type Credentials struct {
	Email    string
	Password string
	Code     string
}

// Strategy は認証戦略のインターフェース。
// ローカル認証とGoogle OAuthの閉じた集合で、動的な戦略登録は行わない。
// 成功時は認証されたユーザーIDを返し、失敗は*model.APIErrorまたは
// ラップされたインフラエラーとして返す。
type Strategy interface {
	Authenticate(ctx context.Context, cred Credentials) (string, error)
}

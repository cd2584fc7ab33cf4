package model

import "time"

// Session はユーザーのログインセッションを表す。
// プロセス内ストアに保持され、サーバー再起動で消滅する。
// Articleは直近の抽出結果で、次の抽出で丸ごと置き換えられる（マージしない）。
type Session struct {
	ID        string
	UserID    string
	Article   *Article
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired はセッションが期限切れかを返す。
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Package session はプロセス内セッションストアを提供する。
//
// セッションはサーバー側の状態（認証済みユーザーIDと直近の抽出結果）を
// 不透明なトークンに紐付けて保持する。永続化は行わず、プロセス再起動で
// 全セッションが消滅する。期限切れエントリはバックグラウンドで掃除される。
package session

import (
	"context"

	"github.com/hitoshi/webclip/internal/model"
)

// Store はセッションストアのインターフェース。
// キーはCookieで配送される不透明なセッションIDで、同一キーへの
// 記事の保存は常に上書き（マージしない）となる。
type Store interface {
	// Create は指定ユーザーの新規セッションを発行する。
	Create(ctx context.Context, userID string) (*model.Session, error)

	// FindByID は指定IDのセッションを取得する。存在しない、または
	// 期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを破棄する。存在しないIDは無視する。
	DeleteByID(ctx context.Context, id string) error

	// SetArticle はセッションに抽出結果を保存する。既存の結果は上書きされる。
	// セッションが存在しない場合はエラーを返す。
	SetArticle(ctx context.Context, id string, article *model.Article) error

	// Article はセッションに保存された抽出結果を返す。未保存または
	// セッションが期限切れの場合はnilを返す。
	Article(ctx context.Context, id string) (*model.Article, error)
}

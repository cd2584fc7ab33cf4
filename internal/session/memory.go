package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/webclip/internal/model"
)

// defaultCleanupInterval は期限切れセッションの掃除間隔。
const defaultCleanupInterval = 5 * time.Minute

// MemoryStore はStoreのプロセス内実装。
// セッションIDをキーとしたマップをRWMutexで保護する。
// 同一セッションキーへの競合書き込みは同一ブラウザクライアント内でしか
// 起こらないため、ロック粒度はストア全体で十分。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session

	maxAge          time.Duration
	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// Option はMemoryStoreの設定オプション。
type Option func(*MemoryStore)

// WithCleanupInterval は期限切れエントリの掃除間隔を変更する。テスト用。
func WithCleanupInterval(d time.Duration) Option {
	return func(s *MemoryStore) {
		s.cleanupInterval = d
	}
}

// NewMemoryStore はMemoryStoreを生成し、バックグラウンドで
// 期限切れセッションの掃除を開始する。
func NewMemoryStore(maxAge time.Duration, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:        make(map[string]*model.Session),
		maxAge:          maxAge,
		cleanupInterval: defaultCleanupInterval,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

// Stop は掃除のバックグラウンドゴルーチンを停止する。
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Create は指定ユーザーの新規セッションを発行する。
func (s *MemoryStore) Create(ctx context.Context, userID string) (*model.Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	sess := &model.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now.Add(s.maxAge),
		CreatedAt: now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return copySession(sess), nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.Expired(time.Now()) {
		return nil, nil
	}

	return copySession(sess), nil
}

// DeleteByID は指定IDのセッションを破棄する。
func (s *MemoryStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// SetArticle はセッションに抽出結果を保存する。既存の結果は上書きされる。
// 書き込みのたびに有効期限を初期TTLに延長する。
func (s *MemoryStore) SetArticle(ctx context.Context, id string, article *model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Expired(time.Now()) {
		return fmt.Errorf("session not found or expired: %s", id)
	}

	sess.Article = article
	sess.ExpiresAt = time.Now().Add(s.maxAge)
	return nil
}

// Article はセッションに保存された抽出結果を返す。未保存の場合はnilを返す。
func (s *MemoryStore) Article(ctx context.Context, id string) (*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Expired(time.Now()) {
		return nil, nil
	}

	return sess.Article, nil
}

// Len は現在保持しているセッション数を返す。テストおよびメトリクス用。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupLoop はバックグラウンドで期限切れセッションを定期的に削除する。
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup は期限切れセッションをマップから除去する。
func (s *MemoryStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}

// copySession はセッションの浅いコピーを返す。
// 呼び出し元の変更がストア内部の状態に波及しないようにする。
func copySession(sess *model.Session) *model.Session {
	c := *sess
	return &c
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)

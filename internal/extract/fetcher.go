// Package extract はWebページの本文抽出パイプラインを提供する。
// フェッチ、可読性抽出、文分割、フィルタリングの各段階で構成される。
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/webclip/internal/model"
)

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// FetchResult はページフェッチの結果。
type FetchResult struct {
	Body       []byte
	StatusCode int
	FinalURL   *url.URL
	Duration   time.Duration
}

// Fetcher はユーザー指定URLのHTMLフェッチのインターフェース。
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
}

// HTTPFetcher はSSRF防止付きHTTPクライアントでページをフェッチする。
// ユーザーが入力した任意のURLを扱うため、静的検証とDialerレベルの
// IP検証の両方を経由する。
type HTTPFetcher struct {
	ssrfGuard   SSRFValidator
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
}

// NewHTTPFetcher はHTTPFetcherの新しいインスタンスを生成する。
func NewHTTPFetcher(ssrfGuard SSRFValidator, logger *slog.Logger, timeout time.Duration, maxBodySize int64) *HTTPFetcher {
	return &HTTPFetcher{
		ssrfGuard:   ssrfGuard,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// Fetch は指定URLのHTMLを取得する。
// 一部のサイトはデフォルトのGoクライアントUAを拒否するため、
// ブラウザ互換のUser-Agentを送信する。
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, model.NewInvalidURLError(err.Error())
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, model.NewInvalidURLError(fmt.Sprintf("unsupported scheme: %q", parsed.Scheme))
	}
	if parsed.Host == "" {
		return nil, model.NewInvalidURLError("missing host")
	}

	// SSRF検証: 静的チェック。DNS再バインディングはクライアント側のDialerで防ぐ。
	if err := f.ssrfGuard.ValidateURL(parsed.String()); err != nil {
		f.logger.Warn("SSRF検証に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSSRFBlockedError()
	}

	client := f.ssrfGuard.NewSafeClient(f.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, model.NewInvalidURLError(err.Error())
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html, application/xhtml+xml, */*")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		duration := time.Since(start)
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("url", parsed.String()),
			slog.String("error", err.Error()),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		if isTimeout(err) {
			return nil, model.NewFetchTimeoutError()
		}
		return nil, model.NewFetchFailedError(parsed.Hostname())
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	result := &FetchResult{
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL,
		Duration:   duration,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("フェッチ先が非2xxを返しました",
			slog.String("url", parsed.String()),
			slog.Int("http_status", resp.StatusCode),
		)
		return result, model.NewFetchFailedError(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		if isTimeout(err) {
			return result, model.NewFetchTimeoutError()
		}
		return result, model.NewFetchFailedError(parsed.Hostname())
	}
	if int64(len(body)) > f.maxBodySize {
		return result, model.NewFetchFailedError("response body too large")
	}

	result.Body = body
	return result, nil
}

// isTimeout はエラーがタイムアウト起因かを判定する。
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// compile-time interface check
var _ Fetcher = (*HTTPFetcher)(nil)

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/webclip/internal/middleware"
	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/view"
)

// ExtractServiceInterface は抽出ハンドラーが必要とするサービスインターフェース。
type ExtractServiceInterface interface {
	Extract(ctx context.Context, rawURL string) (*model.Article, error)
}

// ArticleSessionStore はセッションへの抽出結果の保存・取得インターフェース。
// session.Storeの部分集合として定義する。
type ArticleSessionStore interface {
	SetArticle(ctx context.Context, sessionID string, article *model.Article) error
	Article(ctx context.Context, sessionID string) (*model.Article, error)
}

// ExtractHandler は本文抽出とJSONダウンロードのHTTPハンドラー。
type ExtractHandler struct {
	service  ExtractServiceInterface
	sessions ArticleSessionStore
	renderer *view.Renderer
}

// NewExtractHandler はExtractHandlerを生成する。
func NewExtractHandler(service ExtractServiceInterface, sessions ArticleSessionStore, renderer *view.Renderer) *ExtractHandler {
	return &ExtractHandler{
		service:  service,
		sessions: sessions,
		renderer: renderer,
	}
}

// Extract はURLから本文を抽出し、結果をセッションに保存してビューを表示する。
// POST /extract
// URL未指定は400。抽出結果は同一セッションの直前の結果を上書きする。
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	rawURL := r.PostFormValue("url")
	if rawURL == "" {
		handleServiceError(w, model.NewMissingURLError())
		return
	}

	article, err := h.service.Extract(r.Context(), rawURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		slog.Error("session ID missing after session middleware", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	if err := h.sessions.SetArticle(r.Context(), sessionID, article); err != nil {
		slog.Error("failed to store extraction result",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	jsonData, err := marshalArticle(article)
	if err != nil {
		slog.Error("failed to marshal article", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	h.renderer.RenderPage(w, "extract.html", view.Data{
		CSRFToken: middleware.TokenFromRequest(r),
		Article:   article,
		JSONData:  string(jsonData),
	})
}

// DownloadJSON はセッションに保存された抽出結果をファイルとして配信する。
// GET /download-json
// 保存済み結果がない場合は400。同一セッション内の再ダウンロードは
// 再フェッチせず、常に同一バイト列を返す。
func (h *ExtractHandler) DownloadJSON(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		slog.Error("session ID missing after session middleware", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	article, err := h.sessions.Article(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to load extraction result",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}
	if article == nil {
		handleServiceError(w, model.NewNoDownloadDataError())
		return
	}

	jsonData, err := marshalArticle(article)
	if err != nil {
		slog.Error("failed to marshal article", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=extracted.json")
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonData)
}

// marshalArticle はArticleを2スペースインデントのJSONに整形する。
func marshalArticle(article *model.Article) ([]byte, error) {
	return json.MarshalIndent(article, "", "  ")
}

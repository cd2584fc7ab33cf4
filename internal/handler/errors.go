package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/webclip/internal/middleware"
	"github.com/hitoshi/webclip/internal/model"
)

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// フェッチ先起因の失敗は502、抽出不能なページは422とし、
// サーバー自身の障害（500）と区別する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeDuplicateEmail,
		model.ErrCodePasswordMismatch,
		model.ErrCodeUserNotFound,
		model.ErrCodeBadPassword:
		return http.StatusUnauthorized
	case model.ErrCodeProviderError:
		return http.StatusBadGateway
	case model.ErrCodeMissingURL, model.ErrCodeNoDownloadData:
		return http.StatusBadRequest
	case model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeFetchFailed, model.ErrCodeFetchTimeout:
		return http.StatusBadGateway
	case model.ErrCodeNoContent:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

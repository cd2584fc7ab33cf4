// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, extract, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateEmail   = "DUPLICATE_EMAIL"
	ErrCodePasswordMismatch = "PASSWORD_MISMATCH"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeBadPassword      = "BAD_PASSWORD"
	ErrCodeProviderError    = "PROVIDER_ERROR"
	ErrCodeMissingURL       = "MISSING_URL"
	ErrCodeInvalidURL       = "INVALID_URL"
	ErrCodeSSRFBlocked      = "SSRF_BLOCKED"
	ErrCodeFetchFailed      = "FETCH_FAILED"
	ErrCodeFetchTimeout     = "FETCH_TIMEOUT"
	ErrCodeNoContent        = "NO_CONTENT"
	ErrCodeNoDownloadData   = "NO_DOWNLOAD_DATA"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// NewDuplicateEmailError は登録済みメールアドレスの再登録エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "Email already exists!",
		Category: "auth",
		Action:   "Log in with the existing account or use another email address.",
	}
}

// NewPasswordMismatchError はパスワードと確認入力の不一致エラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "Password and confirmed password do not match!",
		Category: "validation",
		Action:   "Enter the same password in both fields.",
	}
}

// NewUserNotFoundError は未登録メールアドレスのエラーを生成する。
// ログイン時は情報漏えいを避けるため汎用メッセージを使用する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Check for username and password!",
		Category: "auth",
		Action:   "Verify the email address and password.",
	}
}

// NewUnknownEmailError はパスワードリセット時の未登録メールエラーを生成する。
func NewUnknownEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Email does not exist!",
		Category: "auth",
		Action:   "Register an account first.",
	}
}

// NewBadPasswordError はパスワード照合失敗エラーを生成する。
func NewBadPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeBadPassword,
		Message:  "Invalid password!",
		Category: "auth",
		Action:   "Verify the password and try again.",
	}
}

// NewProviderError はOAuthプロバイダー側の失敗を表すエラーを生成する。
func NewProviderError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderError,
		Message:  fmt.Sprintf("Authentication provider error: %s", reason),
		Category: "auth",
		Action:   "Try signing in again.",
	}
}

// NewMissingURLError はURL未指定エラーを生成する。
func NewMissingURLError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingURL,
		Message:  "No URL provided.",
		Category: "validation",
		Action:   "Enter the URL of the page to extract.",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("Invalid URL: %s", reason),
		Category: "validation",
		Action:   "Enter a URL starting with http:// or https://.",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "Access to the requested URL is blocked by security policy.",
		Category: "validation",
		Action:   "Enter the URL of a publicly reachable web site.",
	}
}

// NewFetchFailedError はフェッチ失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("Failed to fetch: %s", reason),
		Category: "extract",
		Action:   "Verify the URL and try again later.",
	}
}

// NewFetchTimeoutError はフェッチのタイムアウトエラーを生成する。
func NewFetchTimeoutError() *APIError {
	return &APIError{
		Code:     ErrCodeFetchTimeout,
		Message:  "Fetching the page took too long.",
		Category: "extract",
		Action:   "Try again later.",
	}
}

// NewNoContentError は抽出可能な本文が存在しないページのエラーを生成する。
// ネットワーク失敗とは区別される正常系の失敗であり、記事形でないページ
// （画像ギャラリー、スクリプト実行が必要なSPA等）で発生する。
func NewNoContentError() *APIError {
	return &APIError{
		Code:     ErrCodeNoContent,
		Message:  "Could not extract meaningful content.",
		Category: "extract",
		Action:   "The page does not look like an article. Try a different URL.",
	}
}

// NewNoDownloadDataError はダウンロード対象が未保存のエラーを生成する。
func NewNoDownloadDataError() *APIError {
	return &APIError{
		Code:     ErrCodeNoDownloadData,
		Message:  "No data to download.",
		Category: "validation",
		Action:   "Extract a page first.",
	}
}

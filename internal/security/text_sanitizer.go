// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は抽出された記事テキストをサニタイズし、
// 本文に紛れ込んだマークアップをプレーンテキスト化する。
// bluemondayのStrictPolicy（全タグ除去）を使用し、除去後に
// HTMLエンティティを復元することで元の文字を保つ。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は抽出テキストのサニタイズ機能のインターフェースを定義する。
// 抽出結果のセッション保存前に使用される。
type TextSanitizerService interface {
	// SanitizeText は入力からすべてのHTMLタグを除去し、
	// エンティティを復元したプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(input string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはいかなるタグも許可しないため、script等の危険な要素は
// 内容ごと、それ以外のタグはタグのみ除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力からすべてのHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) SanitizeText(input string) string {
	stripped := s.policy.Sanitize(input)
	// bluemondayはテキストをエスケープして返すため、
	// "AT&T" が "AT&amp;T" にならないようエンティティを復元する。
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)

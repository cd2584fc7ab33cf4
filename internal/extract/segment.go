package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minParagraphRunes は段落として採用する最小の文字数。
// これ以下の断片はナビゲーションの残骸やキャプションであることが多い。
const minParagraphRunes = 30

// sentenceBoundary は文境界のパターン。終端記号の直後に空白が続く位置で区切る。
// 終端記号自体は直前の文に残す。
var sentenceBoundary = regexp.MustCompile(`[.?!]\s+`)

// SegmentSentences は本文テキストを文単位に分割する。
// "U.S." のような略語の途中では区切らないことは保証しない。
// 短すぎる断片は後段のFilterParagraphsで除去される。
func SegmentSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// loc[0]は終端記号の位置。終端記号を含めて切り出し、後続の空白は捨てる。
		end := loc[0] + 1
		sentences = append(sentences, text[start:end])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// FilterParagraphs は文の列から意味のある段落だけを残す。
// 各文は前後の空白を除去した上で、短すぎるもの（minParagraphRunes以下）と
// コピーライト表記を含むものを除外する。
func FilterParagraphs(sentences []string) []string {
	paragraphs := make([]string, 0, len(sentences))
	for _, s := range sentences {
		trimmed := strings.TrimSpace(s)
		if utf8.RuneCountInString(trimmed) <= minParagraphRunes {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), "copyright") {
			continue
		}
		paragraphs = append(paragraphs, trimmed)
	}
	return paragraphs
}

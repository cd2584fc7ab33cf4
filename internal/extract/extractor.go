package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// ExtractedPage は可読性抽出の結果。
type ExtractedPage struct {
	Title string
	Text  string
}

// Extractor はHTMLから本文テキストとタイトルを取り出すインターフェース。
type Extractor interface {
	Extract(body []byte, pageURL *url.URL) (*ExtractedPage, error)
}

// ReadabilityExtractor はgo-readabilityによる本文抽出の実装。
// ナビゲーションや広告などの飾りを除いた本文テキストを返す。
type ReadabilityExtractor struct{}

// NewReadabilityExtractor はReadabilityExtractorの新しいインスタンスを生成する。
func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{}
}

// Extract はHTMLを解析して本文テキストとタイトルを返す。
// 可読性アルゴリズムがタイトルを特定できない場合は<title>要素に
// フォールバックする。
func (e *ReadabilityExtractor) Extract(body []byte, pageURL *url.URL) (*ExtractedPage, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability parse failed: %w", err)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = documentTitle(body)
	}

	return &ExtractedPage{
		Title: title,
		Text:  article.TextContent,
	}, nil
}

// documentTitle はHTMLの<title>要素のテキストを返す。見つからなければ空文字列。
func documentTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}

// compile-time interface check
var _ Extractor = (*ReadabilityExtractor)(nil)

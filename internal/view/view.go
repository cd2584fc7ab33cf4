// Package view はHTMLビューのレンダリングを提供する。
// テンプレートはバイナリに埋め込み、起動時に一度だけパースする。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/webclip/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Data はテンプレートに渡すレンダリングデータ。
type Data struct {
	CSRFToken string
	Error     string
	Article   *model.Article
	JSONData  string
}

// Renderer は埋め込みテンプレートをレンダリングする。
type Renderer struct {
	templates *template.Template
}

// NewRenderer は全テンプレートをパースしたRendererを生成する。
// テンプレートの不備は起動時に検出する。
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render は指定テンプレートをレンダリングする。
func (r *Renderer) Render(w io.Writer, name string, data Data) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// RenderPage はHTTPレスポンスにテンプレートを書き込む。
// レンダリング失敗時は500を返す。
func (r *Renderer) RenderPage(w http.ResponseWriter, name string, data Data) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.Render(w, name, data); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hitoshi/webclip/internal/metrics"
	"github.com/hitoshi/webclip/internal/model"
	"github.com/hitoshi/webclip/internal/security"
)

// Service は本文抽出パイプラインを統括する。
// フェッチ、可読性抽出、サニタイズ、文分割、フィルタリングを順に実行し、
// ダウンロード可能なArticleを組み立てる。
type Service struct {
	fetcher   Fetcher
	extractor Extractor
	sanitizer security.TextSanitizerService
	collector metrics.MetricsCollector
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	fetcher Fetcher,
	extractor Extractor,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		sanitizer: sanitizer,
		collector: collector,
		logger:    logger,
	}
}

// Extract は指定URLから本文を抽出し、Articleとして返す。
// URLが空の場合はMISSING_URL、抽出結果が空の場合はNO_CONTENTを返す。
func (s *Service) Extract(ctx context.Context, rawURL string) (*model.Article, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, model.NewMissingURLError()
	}

	result, err := s.fetcher.Fetch(ctx, rawURL)
	if result != nil && result.StatusCode != 0 {
		s.collector.RecordHTTPStatus(result.StatusCode)
	}
	if result != nil && result.Duration > 0 {
		s.collector.RecordFetchLatency(result.Duration)
	}
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	page, err := s.extractor.Extract(result.Body, result.FinalURL)
	if err != nil {
		s.logger.Warn("本文抽出に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		s.recordFailure(model.NewNoContentError())
		return nil, model.NewNoContentError()
	}

	title := s.sanitizer.SanitizeText(page.Title)
	text := s.sanitizer.SanitizeText(page.Text)

	paragraphs := FilterParagraphs(SegmentSentences(text))
	if len(paragraphs) == 0 {
		s.logger.Info("意味のある段落が見つかりませんでした",
			slog.String("url", rawURL),
			slog.String("title", title),
		)
		s.recordFailure(model.NewNoContentError())
		return nil, model.NewNoContentError()
	}

	s.collector.RecordExtractSuccess()
	s.collector.RecordParagraphsExtracted(len(paragraphs))
	s.logger.Info("本文抽出が完了しました",
		slog.String("url", rawURL),
		slog.String("title", title),
		slog.Int("paragraphs", len(paragraphs)),
	)

	return &model.Article{
		URL:     rawURL,
		Title:   title,
		Content: paragraphs,
	}, nil
}

// recordFailure は抽出失敗をエラーコード別に記録する。
func (s *Service) recordFailure(err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		s.collector.RecordExtractFailure(strings.ToLower(apiErr.Code))
		return
	}
	s.collector.RecordExtractFailure("internal")
}

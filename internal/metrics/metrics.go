// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 抽出サービスや認証サービスから利用する。
type MetricsCollector interface {
	RecordExtractSuccess()
	RecordExtractFailure(reason string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordParagraphsExtracted(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	extractSuccess prometheus.Counter
	extractFail    *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	paragraphs     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		extractSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webclip_extract_success_total",
			Help: "本文抽出成功の合計数",
		}),
		extractFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webclip_extract_fail_total",
			Help: "本文抽出失敗の理由別合計数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webclip_http_status_total",
			Help: "フェッチ先HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webclip_fetch_latency_seconds",
			Help:    "ページフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		paragraphs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webclip_paragraphs_extracted_total",
			Help: "抽出された段落の合計数",
		}),
	}

	reg.MustRegister(
		c.extractSuccess,
		c.extractFail,
		c.httpStatus,
		c.fetchLatency,
		c.paragraphs,
	)

	return c
}

// RecordExtractSuccess は抽出成功を記録する。
func (c *Collector) RecordExtractSuccess() {
	c.extractSuccess.Inc()
}

// RecordExtractFailure は抽出失敗を理由付きで記録する。
func (c *Collector) RecordExtractFailure(reason string) {
	c.extractFail.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はフェッチ先のHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordParagraphsExtracted は抽出された段落数を記録する。
func (c *Collector) RecordParagraphsExtracted(count int) {
	c.paragraphs.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

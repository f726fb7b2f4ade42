// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// レシピ検索の結果ラベル
const (
	OutcomeSuccess   = "success"
	OutcomeNoWorkout = "no_workout"
	OutcomeUpstream  = "upstream_error"
)

// Collector はPrometheusメトリクスを収集する実装。
// サービス層、Spoonacularクライアント、セッション掃除ジョブから利用する。
type Collector struct {
	workoutsCreated prometheus.Counter
	recipeLookups   *prometheus.CounterVec
	upstreamStatus  *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	sessionsPurged  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		workoutsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runlog_workouts_created_total",
			Help: "記録されたワークアウトの合計数",
		}),
		recipeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runlog_recipe_lookups_total",
			Help: "結果別のレシピ検索数",
		}, []string{"outcome"}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runlog_upstream_status_total",
			Help: "SpoonacularのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "runlog_upstream_latency_seconds",
			Help:    "Spoonacular呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runlog_sessions_purged_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.workoutsCreated,
		c.recipeLookups,
		c.upstreamStatus,
		c.upstreamLatency,
		c.sessionsPurged,
	)

	return c
}

// RecordWorkoutCreated はワークアウト作成を記録する。
func (c *Collector) RecordWorkoutCreated() {
	c.workoutsCreated.Inc()
}

// RecordRecipeLookup はレシピ検索の結果を記録する。
func (c *Collector) RecordRecipeLookup(outcome string) {
	c.recipeLookups.WithLabelValues(outcome).Inc()
}

// RecordUpstreamStatus はSpoonacularのHTTPステータスコードを記録する。
func (c *Collector) RecordUpstreamStatus(statusCode int) {
	c.upstreamStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamLatency はSpoonacular呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordSessionsPurged は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetricFamily は名前に一致するメトリクスファミリーを返す。
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestNewCollector_ReturnsNonNil(t *testing.T) {
	if c := NewCollector(prometheus.NewRegistry()); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

func TestRecordWorkoutCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWorkoutCreated()
	c.RecordWorkoutCreated()

	mf := findMetricFamily(t, reg, "runlog_workouts_created_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 2 {
		t.Errorf("workouts_created_total = %v, want 2", val)
	}
}

func TestRecordRecipeLookup_RecordsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecipeLookup(OutcomeSuccess)
	c.RecordRecipeLookup(OutcomeSuccess)
	c.RecordRecipeLookup(OutcomeUpstream)

	mf := findMetricFamily(t, reg, "runlog_recipe_lookups_total")
	counts := map[string]float64{}
	for _, m := range mf.GetMetric() {
		counts[labelValue(m, "outcome")] = m.GetCounter().GetValue()
	}
	if counts[OutcomeSuccess] != 2 {
		t.Errorf("success = %v, want 2", counts[OutcomeSuccess])
	}
	if counts[OutcomeUpstream] != 1 {
		t.Errorf("upstream_error = %v, want 1", counts[OutcomeUpstream])
	}
}

func TestRecordUpstreamStatus_RecordsByStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpstreamStatus(200)
	c.RecordUpstreamStatus(402)

	mf := findMetricFamily(t, reg, "runlog_upstream_status_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label series, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		code := labelValue(m, "status_code")
		if code != "200" && code != "402" {
			t.Errorf("unexpected status_code label %q", code)
		}
	}
}

func TestRecordUpstreamLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpstreamLatency(250 * time.Millisecond)

	mf := findMetricFamily(t, reg, "runlog_upstream_latency_seconds")
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", h.GetSampleCount())
	}
	if h.GetSampleSum() != 0.25 {
		t.Errorf("sample sum = %v, want 0.25", h.GetSampleSum())
	}
}

func TestRecordSessionsPurged_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionsPurged(3)
	c.RecordSessionsPurged(0)

	mf := findMetricFamily(t, reg, "runlog_sessions_purged_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 3 {
		t.Errorf("sessions_purged_total = %v, want 3", val)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordWorkoutCreated()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "runlog_workouts_created_total 1") {
		t.Error("response should contain runlog_workouts_created_total")
	}
}

// 同一レジストリへの二重登録はpanicする
func TestNewCollector_DuplicateRegistration_Panics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}

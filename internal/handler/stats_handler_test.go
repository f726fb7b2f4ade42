package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/runlog/internal/model"
	"github.com/hitoshi/runlog/internal/workout"
)

func TestWorkoutHandler_WeeklyStats_ReturnsTotals(t *testing.T) {
	svc := &mockWorkoutService{
		weeklyStatsFn: func(_ context.Context, userID string) (*workout.Stats, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return &workout.Stats{Totals: model.WorkoutTotals{
				TotalDistance:  floatPtr(12.5),
				TotalCalories:  floatPtr(656.25),
				AvgRunDuration: floatPtr(40),
			}}, nil
		},
	}
	h := NewWorkoutHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/stats/week", nil)
	req = req.WithContext(withUser(req.Context(), "user-1", "sess-1"))
	w := httptest.NewRecorder()

	h.WeeklyStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["total_distance_week"] != 12.5 {
		t.Errorf("total_distance_week = %v", resp["total_distance_week"])
	}
	if resp["total_calories_week"] != 656.25 {
		t.Errorf("total_calories_week = %v", resp["total_calories_week"])
	}
	if resp["avg_run_duration"] != float64(40) {
		t.Errorf("avg_run_duration = %v", resp["avg_run_duration"])
	}
}

// 該当データがない集計値は0ではなくnullで返す
func TestWorkoutHandler_MonthlyStats_EmptyWindow_ReturnsNulls(t *testing.T) {
	h := NewWorkoutHandler(&mockWorkoutService{})

	req := httptest.NewRequest(http.MethodGet, "/stats/month", nil)
	req = req.WithContext(withUser(req.Context(), "user-1", "sess-1"))
	w := httptest.NewRecorder()

	h.MonthlyStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"total_distance_month", "avg_run_duration", "total_calories_month"} {
		v, ok := resp[key]
		if !ok {
			t.Errorf("missing key %q", key)
			continue
		}
		if v != nil {
			t.Errorf("%s = %v, want null", key, v)
		}
	}
}

func TestWorkoutHandler_WeeklyStats_NoUser_Returns401(t *testing.T) {
	h := NewWorkoutHandler(&mockWorkoutService{})

	req := httptest.NewRequest(http.MethodGet, "/stats/week", nil)
	w := httptest.NewRecorder()

	h.WeeklyStats(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/runlog/internal/middleware"
	"github.com/hitoshi/runlog/internal/workout"
)

// weeklyStatsResponse は週間集計のレスポンス。該当データがない値はnull。
type weeklyStatsResponse struct {
	TotalDistanceWeek *float64 `json:"total_distance_week"`
	AvgRunDuration    *float64 `json:"avg_run_duration"`
	TotalCaloriesWeek *float64 `json:"total_calories_week"`
}

// monthlyStatsResponse は月間集計のレスポンス。該当データがない値はnull。
type monthlyStatsResponse struct {
	TotalDistanceMonth *float64 `json:"total_distance_month"`
	AvgRunDuration     *float64 `json:"avg_run_duration"`
	TotalCaloriesMonth *float64 `json:"total_calories_month"`
}

// WeeklyStats は今週の集計を返す。
// GET /stats/week
func (h *WorkoutHandler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.stats(w, r, h.service.WeeklyStats)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, weeklyStatsResponse{
		TotalDistanceWeek: stats.Totals.TotalDistance,
		AvgRunDuration:    stats.Totals.AvgRunDuration,
		TotalCaloriesWeek: stats.Totals.TotalCalories,
	})
}

// MonthlyStats は今月の集計を返す。
// GET /stats/month
func (h *WorkoutHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.stats(w, r, h.service.MonthlyStats)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, monthlyStatsResponse{
		TotalDistanceMonth: stats.Totals.TotalDistance,
		AvgRunDuration:     stats.Totals.AvgRunDuration,
		TotalCaloriesMonth: stats.Totals.TotalCalories,
	})
}

func (h *WorkoutHandler) stats(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, userID string) (*workout.Stats, error),
) (*workout.Stats, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return nil, false
	}

	stats, err := fetch(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	return stats, true
}

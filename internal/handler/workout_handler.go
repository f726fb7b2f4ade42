package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/runlog/internal/middleware"
	"github.com/hitoshi/runlog/internal/model"
	"github.com/hitoshi/runlog/internal/workout"
)

// dateTimeLayout はレスポンスのdate_time形式。
const dateTimeLayout = "2006-01-02 15:04:05"

// WorkoutServiceInterface はワークアウトハンドラーが必要とするサービスインターフェース。
type WorkoutServiceInterface interface {
	Add(ctx context.Context, userID string, in workout.AddInput) (*model.Workout, error)
	List(ctx context.Context, userID, startDate, endDate string) ([]model.WorkoutWithOwner, error)
	WeeklyStats(ctx context.Context, userID string) (*workout.Stats, error)
	MonthlyStats(ctx context.Context, userID string) (*workout.Stats, error)
}

// WorkoutHandler はワークアウトの記録と一覧のHTTPハンドラー。
type WorkoutHandler struct {
	service WorkoutServiceInterface
}

// NewWorkoutHandler はWorkoutHandlerを生成する。
func NewWorkoutHandler(service WorkoutServiceInterface) *WorkoutHandler {
	return &WorkoutHandler{service: service}
}

// addWorkoutRequest はワークアウト記録リクエストのボディ。
type addWorkoutRequest struct {
	DurationMinutes *int     `json:"duration_minutes"`
	DistanceKm      *float64 `json:"distance_km"`
	RouteNickname   *string  `json:"route_nickname"`
	HeartRate       *int     `json:"heart_rate"`
}

// addWorkoutResponse はワークアウト記録のレスポンス。
type addWorkoutResponse struct {
	Message        string  `json:"message"`
	ID             string  `json:"id"`
	CaloriesBurned float64 `json:"calories_burned"`
}

// workoutResponse は一覧の要素。所有者のage/weightを含む。
type workoutResponse struct {
	ID              string  `json:"id"`
	DurationMinutes int     `json:"duration_minutes"`
	DistanceKm      float64 `json:"distance_km"`
	RouteNickname   *string `json:"route_nickname"`
	HeartRate       *int    `json:"heart_rate"`
	Age             int     `json:"age"`
	Weight          float64 `json:"weight"`
	DateTime        string  `json:"date_time"`
	CaloriesBurned  float64 `json:"calories_burned"`
}

// AddWorkout はワークアウトを記録する。
// POST /workouts
func (h *WorkoutHandler) AddWorkout(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	var req addWorkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := h.service.Add(r.Context(), userID, workout.AddInput{
		DurationMinutes: req.DurationMinutes,
		DistanceKm:      req.DistanceKm,
		RouteNickname:   req.RouteNickname,
		HeartRate:       req.HeartRate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, addWorkoutResponse{
		Message:        "Workout added successfully!",
		ID:             created.ID,
		CaloriesBurned: created.CaloriesBurned,
	})
}

// ListWorkouts はワークアウト一覧を新しい順に返す。
// GET /listed_workouts?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *WorkoutHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	q := r.URL.Query()
	workouts, err := h.service.List(r.Context(), userID, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]workoutResponse, len(workouts))
	for i, wo := range workouts {
		result[i] = workoutResponse{
			ID:              wo.ID,
			DurationMinutes: wo.DurationMinutes,
			DistanceKm:      wo.DistanceKm,
			RouteNickname:   wo.RouteNickname,
			HeartRate:       wo.HeartRate,
			Age:             wo.OwnerAge,
			Weight:          wo.OwnerWeight,
			DateTime:        wo.DateTime.UTC().Format(dateTimeLayout),
			CaloriesBurned:  wo.CaloriesBurned,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

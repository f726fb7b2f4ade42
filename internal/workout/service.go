// Package workout はワークアウトの記録、一覧、期間集計を提供する。
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/runlog/internal/model"
	"github.com/hitoshi/runlog/internal/repository"
)

// DateLayout はクエリパラメータの日付形式。
const DateLayout = "2006-01-02"

// MetricsRecorder はワークアウト作成を記録するインターフェース。
type MetricsRecorder interface {
	RecordWorkoutCreated()
}

// AddInput はワークアウト記録の入力。
// 必須項目の未指定を区別するためポインタで受け取る。
type AddInput struct {
	DurationMinutes *int
	DistanceKm      *float64
	RouteNickname   *string
	HeartRate       *int
}

// Stats は集計ウィンドウの結果。
type Stats struct {
	From   time.Time
	To     time.Time
	Totals model.WorkoutTotals
}

// Service はワークアウトに関するビジネスロジックを提供する。
type Service struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	metrics     MetricsRecorder
	now         func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
		metrics:     metrics,
		now:         time.Now,
	}
}

// Add はワークアウトを記録する。
// date_timeはサーバーの現在時刻（UTC）、消費カロリーはユーザーの体重から算出する。
// 0や負の値はそのまま受け付ける。
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*model.Workout, error) {
	if in.DurationMinutes == nil || in.DistanceKm == nil {
		return nil, model.NewValidationError("duration_minutes and distance_km are required.")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	w := &model.Workout{
		ID:              uuid.New().String(),
		UserID:          userID,
		DurationMinutes: *in.DurationMinutes,
		DistanceKm:      *in.DistanceKm,
		RouteNickname:   in.RouteNickname,
		HeartRate:       in.HeartRate,
		DateTime:        s.now().UTC(),
		CaloriesBurned:  model.CaloriesBurned(*in.DistanceKm, user.Weight),
	}

	if err := s.workoutRepo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create workout: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordWorkoutCreated()
	}
	slog.Info("workout added",
		slog.String("user_id", userID),
		slog.String("workout_id", w.ID),
		slog.Float64("calories_burned", w.CaloriesBurned),
	)
	return w, nil
}

// List はユーザーのワークアウトをdate_time降順で返す。
// startDate/endDateはYYYY-MM-DD形式で、空文字は未指定として扱う。
// endDateは当日0時（UTC）以前の記録だけに一致する。
func (s *Service) List(ctx context.Context, userID, startDate, endDate string) ([]model.WorkoutWithOwner, error) {
	var filter model.WorkoutFilter

	if startDate != "" {
		from, err := time.Parse(DateLayout, startDate)
		if err != nil {
			return nil, model.NewInvalidDateError("start_date")
		}
		filter.From = &from
	}
	if endDate != "" {
		to, err := time.Parse(DateLayout, endDate)
		if err != nil {
			return nil, model.NewInvalidDateError("end_date")
		}
		filter.To = &to
	}

	workouts, err := s.workoutRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	return workouts, nil
}

// WeeklyStats は今週の月曜0時（UTC）から現在までの集計を返す。
func (s *Service) WeeklyStats(ctx context.Context, userID string) (*Stats, error) {
	now := s.now().UTC()
	return s.stats(ctx, userID, WeekStart(now), now)
}

// MonthlyStats は今月1日0時（UTC）から現在までの集計を返す。
func (s *Service) MonthlyStats(ctx context.Context, userID string) (*Stats, error) {
	now := s.now().UTC()
	return s.stats(ctx, userID, MonthStart(now), now)
}

func (s *Service) stats(ctx context.Context, userID string, from, to time.Time) (*Stats, error) {
	totals, err := s.workoutRepo.Totals(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workouts: %w", err)
	}
	return &Stats{From: from, To: to, Totals: *totals}, nil
}

// WeekStart はtを含むISO週の月曜0時（UTC）を返す。
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// MonthStart はtを含む月の1日0時（UTC）を返す。
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

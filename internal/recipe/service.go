// Package recipe は直近のワークアウトに応じたレシピ提案を提供する。
package recipe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/runlog/internal/metrics"
	"github.com/hitoshi/runlog/internal/model"
	"github.com/hitoshi/runlog/internal/repository"
	"github.com/hitoshi/runlog/internal/spoonacular"
)

// RecipeFinder は消費カロリーからレシピを検索するインターフェース。
type RecipeFinder interface {
	FindByCalories(ctx context.Context, calories float64) ([]spoonacular.Recipe, error)
}

// Sanitizer は外部由来の文字列を正規化するインターフェース。
type Sanitizer interface {
	Text(raw string) string
	ImageURL(raw string) string
}

// MetricsRecorder はレシピ検索結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordRecipeLookup(outcome string)
}

// Service はレシピ提案のビジネスロジックを提供する。
type Service struct {
	workoutRepo repository.WorkoutRepository
	finder      RecipeFinder
	sanitizer   Sanitizer
	metrics     MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	workoutRepo repository.WorkoutRepository,
	finder RecipeFinder,
	sanitizer Sanitizer,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		workoutRepo: workoutRepo,
		finder:      finder,
		sanitizer:   sanitizer,
		metrics:     metrics,
	}
}

// Suggest はユーザーの最新ワークアウトの消費カロリーに近いレシピを返す。
// ワークアウトがない場合はWORKOUT_NOT_FOUND、外部API失敗はUPSTREAM_FAILEDを返す。
func (s *Service) Suggest(ctx context.Context, userID string) (*model.RecipeSuggestion, error) {
	latest, err := s.workoutRepo.FindLatestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest workout: %w", err)
	}
	if latest == nil {
		s.record(metrics.OutcomeNoWorkout)
		return nil, model.NewWorkoutNotFoundError()
	}

	found, err := s.finder.FindByCalories(ctx, latest.CaloriesBurned)
	if err != nil {
		s.record(metrics.OutcomeUpstream)
		slog.Warn("recipe lookup failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamFailedError()
	}

	recipes := make([]model.Recipe, 0, len(found))
	for _, r := range found {
		recipes = append(recipes, model.Recipe{
			Title:    s.sanitizer.Text(r.Title),
			Calories: r.Calories,
			Image:    s.sanitizer.ImageURL(r.Image),
		})
	}

	s.record(metrics.OutcomeSuccess)
	return &model.RecipeSuggestion{
		CaloriesBurned: latest.CaloriesBurned,
		Recipes:        recipes,
	}, nil
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRecipeLookup(outcome)
	}
}

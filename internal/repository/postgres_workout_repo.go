package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/runlog/internal/model"
)

// PostgresWorkoutRepo はPostgreSQLを使用したワークアウトリポジトリ。
type PostgresWorkoutRepo struct {
	db *sql.DB
}

// NewPostgresWorkoutRepo はPostgresWorkoutRepoを生成する。
func NewPostgresWorkoutRepo(db *sql.DB) *PostgresWorkoutRepo {
	return &PostgresWorkoutRepo{db: db}
}

// Create はワークアウトを作成する。
func (r *PostgresWorkoutRepo) Create(ctx context.Context, w *model.Workout) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workouts (id, user_id, duration_minutes, distance_km, route_nickname,
		                       heart_rate, date_time, calories_burned)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.UserID, w.DurationMinutes, w.DistanceKm,
		nullString(w.RouteNickname), nullInt(w.HeartRate), w.DateTime, w.CaloriesBurned,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workout: %w", err)
	}
	return nil
}

// ListByUser はユーザーのワークアウトを所有者のage/weight付きでdate_time降順に返す。
// filter.Toは当日0時との比較になるため、その日の0時ちょうど以降の記録は含まれない。
func (r *PostgresWorkoutRepo) ListByUser(ctx context.Context, userID string, filter model.WorkoutFilter) ([]model.WorkoutWithOwner, error) {
	query := `
		SELECT w.id, w.user_id, w.duration_minutes, w.distance_km, w.route_nickname,
		       w.heart_rate, w.date_time, w.calories_burned, u.age, u.weight
		FROM workouts w
		JOIN users u ON u.id = w.user_id
		WHERE w.user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if filter.From != nil {
		query += fmt.Sprintf(" AND w.date_time >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND w.date_time <= $%d", argIndex)
		args = append(args, *filter.To)
	}

	query += " ORDER BY w.date_time DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	workouts := []model.WorkoutWithOwner{}
	for rows.Next() {
		var wo model.WorkoutWithOwner
		var nickname sql.NullString
		var heartRate sql.NullInt64

		if err := rows.Scan(
			&wo.ID, &wo.UserID, &wo.DurationMinutes, &wo.DistanceKm, &nickname,
			&heartRate, &wo.DateTime, &wo.CaloriesBurned, &wo.OwnerAge, &wo.OwnerWeight,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workout row: %w", err)
		}
		wo.RouteNickname = stringPtr(nickname)
		wo.HeartRate = intPtr(heartRate)
		workouts = append(workouts, wo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workout rows: %w", err)
	}

	return workouts, nil
}

// FindLatestByUser はユーザーの最新ワークアウトを返す。存在しない場合はnilを返す。
func (r *PostgresWorkoutRepo) FindLatestByUser(ctx context.Context, userID string) (*model.Workout, error) {
	w := &model.Workout{}
	var nickname sql.NullString
	var heartRate sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, duration_minutes, distance_km, route_nickname,
		        heart_rate, date_time, calories_burned
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY date_time DESC
		 LIMIT 1`,
		userID,
	).Scan(&w.ID, &w.UserID, &w.DurationMinutes, &w.DistanceKm, &nickname,
		&heartRate, &w.DateTime, &w.CaloriesBurned)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest workout: %w", err)
	}

	w.RouteNickname = stringPtr(nickname)
	w.HeartRate = intPtr(heartRate)
	return w, nil
}

// Totals は[from, to]の距離・消費カロリー合計と、全期間の平均運動時間を返す。
// 平均はウィンドウで絞り込まない。
func (r *PostgresWorkoutRepo) Totals(ctx context.Context, userID string, from, to time.Time) (*model.WorkoutTotals, error) {
	var distance, calories, avgDuration sql.NullFloat64

	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(distance_km) FILTER (WHERE date_time >= $2 AND date_time <= $3),
		        SUM(calories_burned) FILTER (WHERE date_time >= $2 AND date_time <= $3),
		        AVG(duration_minutes)::DOUBLE PRECISION
		 FROM workouts
		 WHERE user_id = $1`,
		userID, from, to,
	).Scan(&distance, &calories, &avgDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workouts: %w", err)
	}

	return &model.WorkoutTotals{
		TotalDistance:  floatPtr(distance),
		TotalCalories:  floatPtr(calories),
		AvgRunDuration: floatPtr(avgDuration),
	}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

// compile-time interface check
var _ WorkoutRepository = (*PostgresWorkoutRepo)(nil)

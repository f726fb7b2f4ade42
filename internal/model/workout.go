package model

import "time"

// caloriesPerKmPerKg は体重1kgあたり1kmで消費するカロリー係数。
const caloriesPerKmPerKg = 0.75

// Workout は1回分のトレーニング記録を表す。
// 作成後は変更されない。
type Workout struct {
	ID              string
	UserID          string
	DurationMinutes int
	DistanceKm      float64
	RouteNickname   *string
	HeartRate       *int
	DateTime        time.Time
	CaloriesBurned  float64
}

// WorkoutWithOwner はワークアウトに所有ユーザーの年齢・体重を結合したモデル。
// 一覧APIのレスポンスで使用する。
type WorkoutWithOwner struct {
	Workout
	OwnerAge    int
	OwnerWeight float64
}

// CaloriesBurned は距離と体重から消費カロリーを算出する。
// distance_km * (0.75 * weight)。作成時に1回だけ計算し保存する。
func CaloriesBurned(distanceKm, weight float64) float64 {
	return distanceKm * (caloriesPerKmPerKg * weight)
}

// WorkoutFilter はワークアウト一覧の日付フィルタ。
// nilの境界は適用しない。
type WorkoutFilter struct {
	From *time.Time // date_time >= From
	To   *time.Time // date_time <= To
}

// WorkoutTotals は集計ウィンドウ内の合計値と全期間の平均時間。
// 該当データがない場合は各値がnilになる。
type WorkoutTotals struct {
	TotalDistance  *float64
	TotalCalories  *float64
	AvgRunDuration *float64
}

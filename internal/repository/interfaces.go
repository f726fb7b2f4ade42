// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/runlog/internal/model"
)

// ErrUsernameTaken はusernameの一意制約違反を表す。
// 事前チェックをすり抜けた同時登録もこのエラーになる。
var ErrUsernameTaken = errors.New("username already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。usernameが重複する場合はErrUsernameTakenを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はusernameの完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを全て削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// WorkoutRepository はワークアウトデータの永続化インターフェース。
// 全ての読み取りはuserIDでスコープされる。
type WorkoutRepository interface {
	// Create はワークアウトを作成する。
	Create(ctx context.Context, workout *model.Workout) error

	// ListByUser はユーザーのワークアウトを所有者のage/weight付きでdate_time降順に返す。
	ListByUser(ctx context.Context, userID string, filter model.WorkoutFilter) ([]model.WorkoutWithOwner, error)

	// FindLatestByUser はユーザーの最新ワークアウトを返す。存在しない場合はnilを返す。
	FindLatestByUser(ctx context.Context, userID string) (*model.Workout, error)

	// Totals は[from, to]の距離・消費カロリー合計と、全期間の平均運動時間を返す。
	// 該当行がない集計値はnilになる。
	Totals(ctx context.Context, userID string, from, to time.Time) (*model.WorkoutTotals, error)
}

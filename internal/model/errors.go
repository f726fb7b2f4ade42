// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, workout, recipe, system
	Action   string // クライアント向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeWorkoutNotFound    = "WORKOUT_NOT_FOUND"
	ErrCodeUpstreamFailed     = "UPSTREAM_FAILED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "Check the request body and query parameters.",
	}
}

// NewMissingCredentialsError はusername/password未指定エラーを生成する。
func NewMissingCredentialsError() *APIError {
	return NewValidationError("Username and password are required.")
}

// NewInvalidDateError は日付パラメータの形式エラーを生成する。
func NewInvalidDateError(param string) *APIError {
	return NewValidationError(fmt.Sprintf("Invalid %s format. Use YYYY-MM-DD.", param))
}

// NewUsernameTakenError はusername重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "Username already exists.",
		Category: "validation",
		Action:   "Choose a different username.",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// usernameの存在有無は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid username or password.",
		Category: "auth",
		Action:   "Check your username and password.",
	}
}

// NewUnauthorizedError は未ログインエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "Log in and retry.",
	}
}

// NewWorkoutNotFoundError はワークアウト未登録エラーを生成する。
func NewWorkoutNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeWorkoutNotFound,
		Message:  "No workout found for the current user.",
		Category: "workout",
		Action:   "Record a workout first.",
	}
}

// NewUpstreamFailedError はレシピAPI呼び出し失敗エラーを生成する。
func NewUpstreamFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  "Failed to fetch recipes from Spoonacular.",
		Category: "recipe",
		Action:   "Try again later.",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Try again later.",
	}
}

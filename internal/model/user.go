package model

import "time"

// User はサービス利用ユーザーを表す。
// usernameは大文字小文字を区別して一意。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Age          int
	Weight       float64 // kg
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleEmployee は一般従業員の役割。
	RoleEmployee Role = "employee"
	// RoleManager は管理者の役割。唯一の特権タグであり、
	// これ以外の値（未解決を含む）はすべて非特権として扱う。
	RoleManager Role = "manager"
)

// IsValid はRoleが定義済みの値かどうかを判定する。
func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleManager
}

// Profile は認証ユーザーに1対1で紐付く役割情報を表す。
// セッション確立直後にユーザーIDで参照される読み取り専用レコード。
// このアプリケーションから更新されることはない。
type Profile struct {
	ID       string
	FullName string
	Role     Role
}

// Session はサインイン成功時に発行されるログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Credential はメールアドレス＋パスワードによる認証情報を表す。
// PasswordHashはbcryptハッシュであり、平文がこの構造体に入ることはない。
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

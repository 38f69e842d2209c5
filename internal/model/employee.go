// Package model はドメインモデルを定義する。
package model

import "time"

// EmployeeStatus は従業員の在籍状態を表す。
type EmployeeStatus string

const (
	// EmployeeStatusActive は在籍中の状態。
	EmployeeStatusActive EmployeeStatus = "active"
	// EmployeeStatusInactive は非在籍の状態。
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// IsValid はEmployeeStatusが定義済みの値かどうかを判定する。
func (s EmployeeStatus) IsValid() bool {
	return s == EmployeeStatusActive || s == EmployeeStatusInactive
}

// Employee は管理対象の従業員レコードを表す。
// Profileとは独立したビジネスエンティティで、emailが自然キー。
// Employee.RoleとProfile.Roleは一致する保証がない（ソースデータモデルを踏襲）。
// 従業員ビューで「自分のレコード」を解決する際はSession.Emailと結合する。
type Employee struct {
	ID        string
	FullName  string
	Email     string
	Role      Role
	Status    EmployeeStatus
	CreatedAt time.Time
}

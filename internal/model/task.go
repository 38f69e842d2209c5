// Package model はドメインモデルを定義する。
package model

import "time"

// TaskStatus はタスクの進行状態を表す。
type TaskStatus string

const (
	// TaskStatusTodo は未着手の状態。
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusInProgress は作業中の状態。
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusDone は完了の状態。
	TaskStatusDone TaskStatus = "done"
)

// IsValid はTaskStatusが定義済みの値かどうかを判定する。
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Task は従業員1名にemailで割り当てられる作業単位を表す。
// EmployeeEmailはemployees.emailへのソフト外部キーで、
// ストア層では参照整合性を強制しない（アドバイザリのみ）。
// CompletedAtはステータスがdoneに遷移した時点で設定され、
// その後doneから戻ってもクリアされない。
type Task struct {
	ID            string
	Title         string
	Description   string
	Status        TaskStatus
	DueDate       *time.Time
	EmployeeEmail string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// Package repository はリモートストア（PostgreSQL）への
// データアクセスのインターフェースを定義する。
// 全操作は単発の非同期呼び出しで、リトライは行わない。
// 失敗したミューテーションはローカル状態を一切変更しない。
package repository

import (
	"context"
	"time"

	"github.com/Techlead-ANKAN/ems/internal/model"
)

// ProfileRepository はプロファイルデータの永続化インターフェース。
// プロファイルはこのアプリケーションからは読み取り専用。
type ProfileRepository interface {
	// FindByID は指定IDのプロファイルを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// CredentialRepository は認証情報の永続化インターフェース。
type CredentialRepository interface {
	// FindByEmail はメールアドレスで認証情報を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// EmployeeRepository は従業員データの永続化インターフェース。
// 従業員の削除操作はこのサーフェスには存在しない（仕様上の非対応）。
type EmployeeRepository interface {
	// List は全従業員をcreated_at昇順で返す。
	List(ctx context.Context) ([]*model.Employee, error)

	// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Employee, error)

	// ListByEmail はメールアドレスに一致する従業員を全件返す。
	// 「自分のレコード」解決に使い、件数判定（0件/複数件エラー）は呼び出し側が行う。
	ListByEmail(ctx context.Context, email string) ([]*model.Employee, error)

	// Create は従業員を作成する。
	Create(ctx context.Context, employee *model.Employee) error

	// Update は従業員を全フィールド更新する。対象行のみに影響する。
	Update(ctx context.Context, employee *model.Employee) error
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// ListAll は全タスクをcreated_at降順で返す。
	ListAll(ctx context.Context) ([]*model.Task, error)

	// ListByAssignee はemployee_emailが一致するタスクをcreated_at降順で返す。
	ListByAssignee(ctx context.Context, email string) ([]*model.Task, error)

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクを全フィールド更新する。
	Update(ctx context.Context, task *model.Task) error

	// UpdateStatus はstatusとcompleted_atのみを部分更新する。
	// 従業員に許可される唯一のミューテーション。
	UpdateStatus(ctx context.Context, id string, status model.TaskStatus, completedAt *time.Time) error

	// Delete は指定IDのタスクを削除する。
	Delete(ctx context.Context, id string) error
}

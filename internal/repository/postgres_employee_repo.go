package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Techlead-ANKAN/ems/internal/model"
)

// PostgresEmployeeRepo はPostgreSQLを使用した従業員リポジトリ。
type PostgresEmployeeRepo struct {
	db *sql.DB
}

// NewPostgresEmployeeRepo はPostgresEmployeeRepoを生成する。
func NewPostgresEmployeeRepo(db *sql.DB) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{db: db}
}

// List は全従業員をcreated_at昇順で返す。
func (r *PostgresEmployeeRepo) List(ctx context.Context) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, full_name, email, role, status, created_at
		 FROM employees
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	emp := &model.Employee{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, role, status, created_at
		 FROM employees
		 WHERE id = $1`,
		id,
	).Scan(&emp.ID, &emp.FullName, &emp.Email, &emp.Role, &emp.Status, &emp.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}

	return emp, nil
}

// ListByEmail はメールアドレスに一致する従業員を全件返す。
// 件数判定（0件/複数件エラー）は呼び出し側が行う。
func (r *PostgresEmployeeRepo) ListByEmail(ctx context.Context, email string) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, full_name, email, role, status, created_at
		 FROM employees
		 WHERE email = $1
		 ORDER BY created_at ASC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by email: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

// Create は従業員を作成する。
func (r *PostgresEmployeeRepo) Create(ctx context.Context, employee *model.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, full_name, email, role, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		employee.ID, employee.FullName, employee.Email, employee.Role, employee.Status, employee.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

// Update は従業員を全フィールド更新する。
// 対象行が存在しない場合はエラーを返す。
func (r *PostgresEmployeeRepo) Update(ctx context.Context, employee *model.Employee) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE employees
		 SET full_name = $2, email = $3, role = $4, status = $5
		 WHERE id = $1`,
		employee.ID, employee.FullName, employee.Email, employee.Role, employee.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("employee not found: %s", employee.ID)
	}
	return nil
}

// scanEmployees は結果セットからEmployeeのスライスを構築する。
func scanEmployees(rows *sql.Rows) ([]*model.Employee, error) {
	var employees []*model.Employee
	for rows.Next() {
		emp := &model.Employee{}
		if err := rows.Scan(&emp.ID, &emp.FullName, &emp.Email, &emp.Role, &emp.Status, &emp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}
	return employees, nil
}

// compile-time interface check
var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)

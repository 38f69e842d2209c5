// Package employee は従業員の参照・作成・更新のビジネスロジックを提供する。
// 従業員の削除操作は提供しない。
package employee

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Techlead-ANKAN/ems/internal/model"
	"github.com/Techlead-ANKAN/ems/internal/repository"
	"github.com/Techlead-ANKAN/ems/internal/security"
)

// CreateInput は従業員作成の入力を表す。
type CreateInput struct {
	FullName string
	Email    string
	Role     string
	Status   string
}

// UpdateInput は従業員更新の入力を表す。全フィールドを上書きする。
type UpdateInput struct {
	FullName string
	Email    string
	Role     string
	Status   string
}

// StoreRecorder はストア操作結果のメトリクス記録インターフェース。
type StoreRecorder interface {
	RecordStoreOperation(operation string, success bool)
}

// Service は従業員に関するビジネスロジックを提供する。
type Service struct {
	employeeRepo repository.EmployeeRepository
	sanitizer    security.InputSanitizerService
	recorder     StoreRecorder
}

// NewService はServiceを生成する。
// recorderはnil可（メトリクスを記録しない）。
func NewService(employeeRepo repository.EmployeeRepository, sanitizer security.InputSanitizerService, recorder StoreRecorder) *Service {
	return &Service{
		employeeRepo: employeeRepo,
		sanitizer:    sanitizer,
		recorder:     recorder,
	}
}

// recordStoreOperation はストア操作の結果をメトリクスに記録する。
func (s *Service) recordStoreOperation(operation string, success bool) {
	if s.recorder != nil {
		s.recorder.RecordStoreOperation(operation, success)
	}
}

// List は全従業員を作成日時の昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Employee, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Get は指定IDの従業員を取得する。存在しない場合はEMPLOYEE_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Employee, error) {
	employee, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	if employee == nil {
		return nil, model.NewEmployeeNotFoundError(id)
	}
	return employee, nil
}

// FindSelf はサインイン中ユーザーのメールアドレスに対応する従業員レコードを返す。
// 一致が0件の場合はRECORD_NOT_FOUND、複数件の場合はAMBIGUOUS_RECORDを返す。
// ちょうど1件のときのみ成功する。
func (s *Service) FindSelf(ctx context.Context, email string) (*model.Employee, error) {
	matches, err := s.employeeRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by email: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, model.NewRecordNotFoundError(email)
	case 1:
		return matches[0], nil
	default:
		slog.Warn("duplicate employee records for email",
			slog.String("email", email),
			slog.Int("count", len(matches)),
		)
		return nil, model.NewAmbiguousRecordError(email)
	}
}

// Create は従業員を作成して返す。役割未指定はemployee、ステータス未指定はactiveとして扱う。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Employee, error) {
	fields, err := s.validate(input.FullName, input.Email, input.Role, input.Status)
	if err != nil {
		return nil, err
	}

	employee := &model.Employee{
		ID:        uuid.NewString(),
		FullName:  fields.fullName,
		Email:     fields.email,
		Role:      fields.role,
		Status:    fields.status,
		CreatedAt: time.Now(),
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		s.recordStoreOperation("employees.create", false)
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	s.recordStoreOperation("employees.create", true)

	slog.Info("employee created",
		slog.String("employee_id", employee.ID),
		slog.String("role", string(employee.Role)),
	)
	return employee, nil
}

// Update は既存従業員を全フィールド更新して返す。
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*model.Employee, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.validate(input.FullName, input.Email, input.Role, input.Status)
	if err != nil {
		return nil, err
	}

	updated := &model.Employee{
		ID:        current.ID,
		FullName:  fields.fullName,
		Email:     fields.email,
		Role:      fields.role,
		Status:    fields.status,
		CreatedAt: current.CreatedAt,
	}

	if err := s.employeeRepo.Update(ctx, updated); err != nil {
		s.recordStoreOperation("employees.update", false)
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	s.recordStoreOperation("employees.update", true)

	slog.Info("employee updated", slog.String("employee_id", updated.ID))
	return updated, nil
}

// validatedFields は検証・サニタイズ済みの従業員フィールド。
type validatedFields struct {
	fullName string
	email    string
	role     model.Role
	status   model.EmployeeStatus
}

// validate は入力をサニタイズし、必須項目と列挙値を検証する。
func (s *Service) validate(fullName, email, rawRole, rawStatus string) (*validatedFields, error) {
	name := s.sanitizer.SanitizeText(fullName)
	if name == "" {
		return nil, model.NewValidationFailedError("氏名は必須です")
	}

	mail := s.sanitizer.SanitizeText(email)
	if mail == "" {
		return nil, model.NewValidationFailedError("メールアドレスは必須です")
	}

	role := model.Role(rawRole)
	if rawRole == "" {
		role = model.RoleEmployee
	}
	if !role.IsValid() {
		return nil, model.NewInvalidRoleError(rawRole)
	}

	status := model.EmployeeStatus(rawStatus)
	if rawStatus == "" {
		status = model.EmployeeStatusActive
	}
	if !status.IsValid() {
		return nil, model.NewInvalidStatusError(rawStatus)
	}

	return &validatedFields{
		fullName: name,
		email:    mail,
		role:     role,
		status:   status,
	}, nil
}

// Package task はタスクの参照・作成・更新・削除のビジネスロジックを提供する。
package task

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

// dueDateLayout は期日の入出力フォーマット。
const dueDateLayout = "2006-01-02"

// CreateInput はタスク作成の入力を表す。
// DueDateは YYYY-MM-DD 形式の文字列。空文字列は期日なしとして扱う。
type CreateInput struct {
	Title         string
	Description   string
	Status        string
	DueDate       string
	EmployeeEmail string
}

// UpdateInput はタスク更新の入力を表す。全フィールドを上書きする。
type UpdateInput struct {
	Title         string
	Description   string
	Status        string
	DueDate       string
	EmployeeEmail string
}

// StoreRecorder はストア操作結果のメトリクス記録インターフェース。
type StoreRecorder interface {
	RecordStoreOperation(operation string, success bool)
}

// Service はタスクに関するビジネスロジックを提供する。
// ミューテーションは単発呼び出しで、失敗時はローカル状態を変更しない。
type Service struct {
	taskRepo  repository.TaskRepository
	sanitizer security.InputSanitizerService
	recorder  StoreRecorder
}

// NewService はServiceを生成する。
// recorderはnil可（メトリクスを記録しない）。
func NewService(taskRepo repository.TaskRepository, sanitizer security.InputSanitizerService, recorder StoreRecorder) *Service {
	return &Service{
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// recordStoreOperation はストア操作の結果をメトリクスに記録する。
func (s *Service) recordStoreOperation(operation string, success bool) {
	if s.recorder != nil {
		s.recorder.RecordStoreOperation(operation, success)
	}
}

// ListAll は全タスクを作成日時の降順で返す。管理者ビュー用。
func (s *Service) ListAll(ctx context.Context) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListByAssignee は指定メールアドレスに割り当てられたタスクを
// 作成日時の降順で返す。従業員ビュー用。
func (s *Service) ListByAssignee(ctx context.Context, email string) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListByAssignee(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by assignee: %w", err)
	}
	return tasks, nil
}

// Get は指定IDのタスクを取得する。存在しない場合はTASK_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(id)
	}
	return task, nil
}

// Create はタスクを作成して返す。
// ステータス未指定はtodoとして扱い、作成時点でdoneの場合は完了日時を記録する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Task, error) {
	title := s.sanitizer.SanitizeText(input.Title)
	if title == "" {
		return nil, model.NewValidationFailedError("タイトルは必須です")
	}

	status := model.TaskStatus(input.Status)
	if input.Status == "" {
		status = model.TaskStatusTodo
	}
	if !status.IsValid() {
		return nil, model.NewInvalidStatusError(input.Status)
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   s.sanitizer.SanitizeText(input.Description),
		Status:        status,
		DueDate:       dueDate,
		EmployeeEmail: s.sanitizer.SanitizeText(input.EmployeeEmail),
		CreatedAt:     time.Now(),
	}
	if status == model.TaskStatusDone {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.recordStoreOperation("tasks.create", false)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.recordStoreOperation("tasks.create", true)

	slog.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("status", string(task.Status)),
	)
	return task, nil
}

// Update は既存タスクを全フィールド更新して返す。
// ステータスがdoneへ遷移した時点で完了日時を記録する。
// doneから他のステータスへ戻しても完了日時は消さない（完了履歴の保持）。
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*model.Task, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	title := s.sanitizer.SanitizeText(input.Title)
	if title == "" {
		return nil, model.NewValidationFailedError("タイトルは必須です")
	}

	status := model.TaskStatus(input.Status)
	if !status.IsValid() {
		return nil, model.NewInvalidStatusError(input.Status)
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	updated := &model.Task{
		ID:            current.ID,
		Title:         title,
		Description:   s.sanitizer.SanitizeText(input.Description),
		Status:        status,
		DueDate:       dueDate,
		EmployeeEmail: s.sanitizer.SanitizeText(input.EmployeeEmail),
		CreatedAt:     current.CreatedAt,
		CompletedAt:   current.CompletedAt,
	}
	if status == model.TaskStatusDone && current.Status != model.TaskStatusDone {
		now := time.Now()
		updated.CompletedAt = &now
	}

	if err := s.taskRepo.Update(ctx, updated); err != nil {
		s.recordStoreOperation("tasks.update", false)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	s.recordStoreOperation("tasks.update", true)

	slog.Info("task updated",
		slog.String("task_id", updated.ID),
		slog.String("status", string(updated.Status)),
	)
	return updated, nil
}

// UpdateStatus はタスクのステータスのみを更新して返す。
// 従業員に許可される唯一のミューテーション。完了日時の扱いはUpdateと同じ。
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (*model.Task, error) {
	status := model.TaskStatus(rawStatus)
	if !status.IsValid() {
		return nil, model.NewInvalidStatusError(rawStatus)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	completedAt := current.CompletedAt
	if status == model.TaskStatusDone && current.Status != model.TaskStatusDone {
		now := time.Now()
		completedAt = &now
	}

	if err := s.taskRepo.UpdateStatus(ctx, id, status, completedAt); err != nil {
		s.recordStoreOperation("tasks.update_status", false)
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	s.recordStoreOperation("tasks.update_status", true)

	slog.Info("task status updated",
		slog.String("task_id", id),
		slog.String("status", string(status)),
	)

	current.Status = status
	current.CompletedAt = completedAt
	return current, nil
}

// Delete は指定IDのタスクを削除する。存在しない場合はTASK_NOT_FOUNDを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		s.recordStoreOperation("tasks.delete", false)
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.recordStoreOperation("tasks.delete", true)
	slog.Info("task deleted", slog.String("task_id", id))
	return nil
}

// parseDueDate は期日文字列を検証して返す。空文字列は期日なし（nil）に正規化する。
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dueDateLayout, value)
	if err != nil {
		return nil, model.NewInvalidDueDateError(value)
	}
	return &t, nil
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Techlead-ANKAN/ems/internal/middleware"
	"github.com/Techlead-ANKAN/ems/internal/model"
	"github.com/Techlead-ANKAN/ems/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	ListAll(ctx context.Context) ([]*model.Task, error)
	ListByAssignee(ctx context.Context, email string) ([]*model.Task, error)
	Create(ctx context.Context, input task.CreateInput) (*model.Task, error)
	Update(ctx context.Context, id string, input task.UpdateInput) (*model.Task, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Task, error)
	Delete(ctx context.Context, id string) error
}

// TaskHandler はタスク管理のHTTPハンドラー。管理者専用ルートに配置される。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// taskResponse はタスク情報のAPIレスポンス。
// DueDateはYYYY-MM-DD形式の文字列。期日なしの場合はnull。
type taskResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	DueDate       *string    `json:"due_date"`
	EmployeeEmail string     `json:"employee_email"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// taskRequest はタスクの作成・更新リクエストのボディ。
type taskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	DueDate       string `json:"due_date"`
	EmployeeEmail string `json:"employee_email"`
}

// ListTasks は全タスクの一覧を返す。
// GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeTaskList(w, tasks)
}

// CreateTask はタスクを作成する。
// POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	created, err := h.service.Create(r.Context(), task.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		DueDate:       req.DueDate,
		EmployeeEmail: req.EmployeeEmail,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toTaskResponse(created))
}

// UpdateTask はタスクを全フィールド更新する。
// PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	updated, err := h.service.Update(r.Context(), taskID, task.UpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		DueDate:       req.DueDate,
		EmployeeEmail: req.EmployeeEmail,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTaskResponse(updated))
}

// DeleteTask はタスクを削除する。
// DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeTaskList はタスク一覧のJSONレスポンスを書き込む。
func writeTaskList(w http.ResponseWriter, tasks []*model.Task) {
	results := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		results[i] = toTaskResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
func toTaskResponse(t *model.Task) taskResponse {
	var dueDate *string
	if t.DueDate != nil {
		s := t.DueDate.Format("2006-01-02")
		dueDate = &s
	}

	return taskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		DueDate:       dueDate,
		EmployeeEmail: t.EmployeeEmail,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

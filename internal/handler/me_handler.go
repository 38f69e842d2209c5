package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Techlead-ANKAN/ems/internal/middleware"
	"github.com/Techlead-ANKAN/ems/internal/model"
)

// SelfFinder は自分の従業員レコード解決に必要なインターフェース。
type SelfFinder interface {
	FindSelf(ctx context.Context, email string) (*model.Employee, error)
}

// MeHandler は従業員自身のビューのHTTPハンドラー。
// 「自分のレコード」はセッションのメールアドレスとemployees.emailの結合で解決する。
type MeHandler struct {
	employees SelfFinder
	tasks     TaskServiceInterface
}

// NewMeHandler はMeHandlerを生成する。
func NewMeHandler(employees SelfFinder, tasks TaskServiceInterface) *MeHandler {
	return &MeHandler{
		employees: employees,
		tasks:     tasks,
	}
}

// statusRequest はステータス更新リクエストのボディ。
type statusRequest struct {
	Status string `json:"status"`
}

// MyEmployee はサインイン中ユーザー自身の従業員レコードを返す。
// 一致が0件の場合は404、複数件の場合は409を返す。
// GET /api/me/employee
func (h *MeHandler) MyEmployee(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	self, err := h.employees.FindSelf(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEmployeeResponse(self))
}

// MyTasks はサインイン中ユーザーに割り当てられたタスクの一覧を返す。
// GET /api/me/tasks
func (h *MeHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	tasks, err := h.tasks.ListByAssignee(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeTaskList(w, tasks)
}

// UpdateMyTaskStatus は自分に割り当てられたタスクのステータスを更新する。
// 従業員に許可される唯一のミューテーション。
// 自分以外のタスクに対しては404を返す（存在の有無を漏らさない）。
// PATCH /api/me/tasks/{id}/status
func (h *MeHandler) UpdateMyTaskStatus(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	taskID := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	// 割り当て確認: 自分のタスク一覧に含まれるIDのみ更新を許可する
	owned, err := h.ownsTask(r.Context(), email, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !owned {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewTaskNotFoundError(taskID))
		return
	}

	updated, err := h.tasks.UpdateStatus(r.Context(), taskID, req.Status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTaskResponse(updated))
}

// ownsTask は指定タスクがサインイン中ユーザーに割り当てられているかを返す。
func (h *MeHandler) ownsTask(ctx context.Context, email, taskID string) (bool, error) {
	tasks, err := h.tasks.ListByAssignee(ctx, email)
	if err != nil {
		return false, err
	}
	for _, t := range tasks {
		if t.ID == taskID {
			return true, nil
		}
	}
	return false, nil
}

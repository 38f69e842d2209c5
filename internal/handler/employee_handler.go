package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Techlead-ANKAN/ems/internal/employee"
	"github.com/Techlead-ANKAN/ems/internal/middleware"
	"github.com/Techlead-ANKAN/ems/internal/model"
)

// EmployeeServiceInterface は従業員ハンドラーが必要とするサービスインターフェース。
type EmployeeServiceInterface interface {
	List(ctx context.Context) ([]*model.Employee, error)
	Create(ctx context.Context, input employee.CreateInput) (*model.Employee, error)
	Update(ctx context.Context, id string, input employee.UpdateInput) (*model.Employee, error)
}

// EmployeeHandler は従業員管理のHTTPハンドラー。管理者専用ルートに配置される。
type EmployeeHandler struct {
	service EmployeeServiceInterface
}

// NewEmployeeHandler はEmployeeHandlerを生成する。
func NewEmployeeHandler(service EmployeeServiceInterface) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
	}
}

// employeeResponse は従業員情報のAPIレスポンス。
type employeeResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// employeeRequest は従業員の作成・更新リクエストのボディ。
type employeeRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// ListEmployees は全従業員の一覧を返す。
// GET /api/employees
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]employeeResponse, len(employees))
	for i, e := range employees {
		results[i] = toEmployeeResponse(e)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// CreateEmployee は従業員を作成する。
// POST /api/employees
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	created, err := h.service.Create(r.Context(), employee.CreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEmployeeResponse(created))
}

// UpdateEmployee は従業員を全フィールド更新する。
// PUT /api/employees/{id}
func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationFailedError("リクエストボディの解析に失敗しました"))
		return
	}

	updated, err := h.service.Update(r.Context(), employeeID, employee.UpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEmployeeResponse(updated))
}

// toEmployeeResponse はmodel.EmployeeからAPIレスポンスに変換する。
func toEmployeeResponse(e *model.Employee) employeeResponse {
	return employeeResponse{
		ID:        e.ID,
		FullName:  e.FullName,
		Email:     e.Email,
		Role:      string(e.Role),
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

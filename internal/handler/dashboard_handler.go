package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Techlead-ANKAN/ems/internal/middleware"
	"github.com/Techlead-ANKAN/ems/internal/model"
	"github.com/Techlead-ANKAN/ems/internal/resolver"
)

// DashboardHandler は役割に応じたダッシュボードビューを返すHTTPハンドラー。
// "manager" が唯一の特権タグであり、役割未確定を含む他のすべての値は
// 従業員ビューにフォールバックする。
type DashboardHandler struct {
	roles     middleware.RoleResolver
	employees EmployeeServiceInterface
	self      SelfFinder
	tasks     TaskServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(
	roles middleware.RoleResolver,
	employees EmployeeServiceInterface,
	self SelfFinder,
	tasks TaskServiceInterface,
) *DashboardHandler {
	return &DashboardHandler{
		roles:     roles,
		employees: employees,
		self:      self,
		tasks:     tasks,
	}
}

// dashboardResponse はダッシュボードのAPIレスポンス。
// Viewが "manager" の場合はEmployeesとTasks、"employee" の場合は
// SelfとTasksが設定される。
type dashboardResponse struct {
	View      string             `json:"view"`
	Role      string             `json:"role,omitempty"`
	Employees []employeeResponse `json:"employees,omitempty"`
	Self      *employeeResponse  `json:"self,omitempty"`
	SelfError *errorDetail       `json:"self_error,omitempty"`
	Tasks     []taskResponse     `json:"tasks"`
}

// errorDetail はダッシュボード内の部分的エラーの詳細。
// 自分のレコードが解決できなくてもタスク一覧は返すため、
// エラーはレスポンスに埋め込む。
type errorDetail struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// Dashboard は役割に応じたダッシュボードビューを返す。
// GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	res, err := h.roles.Resolve(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if res.IsManager() {
		h.managerView(w, r)
		return
	}
	h.employeeView(w, r, res)
}

// managerView は全従業員と全タスクを含む管理者ビューを構築する。
func (h *DashboardHandler) managerView(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tasks, err := h.tasks.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := dashboardResponse{
		View:  "manager",
		Role:  string(model.RoleManager),
		Tasks: make([]taskResponse, len(tasks)),
	}
	resp.Employees = make([]employeeResponse, len(employees))
	for i, e := range employees {
		resp.Employees[i] = toEmployeeResponse(e)
	}
	for i, t := range tasks {
		resp.Tasks[i] = toTaskResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// employeeView は自分のレコードと自分のタスクを含む従業員ビューを構築する。
// 自分のレコード解決の失敗（0件・複数件）は部分的エラーとして埋め込み、
// タスク一覧の返却は継続する。
func (h *DashboardHandler) employeeView(w http.ResponseWriter, r *http.Request, res *resolver.Resolution) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	resp := dashboardResponse{
		View: "employee",
		Role: string(res.Role),
	}

	self, err := h.self.FindSelf(r.Context(), email)
	if err != nil {
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			handleServiceError(w, err)
			return
		}
		resp.SelfError = &errorDetail{
			Code:     apiErr.Code,
			Message:  apiErr.Message,
			Category: apiErr.Category,
			Action:   apiErr.Action,
		}
	} else {
		selfResp := toEmployeeResponse(self)
		resp.Self = &selfResp
	}

	tasks, err := h.tasks.ListByAssignee(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	resp.Tasks = make([]taskResponse, len(tasks))
	for i, t := range tasks {
		resp.Tasks[i] = toTaskResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

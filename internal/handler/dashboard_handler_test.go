package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Techlead-ANKAN/ems/internal/model"
	"github.com/Techlead-ANKAN/ems/internal/resolver"
)

type mockRoleResolver struct {
	resolveFn func(ctx context.Context, sessionID string) (*resolver.Resolution, error)
}

func (m *mockRoleResolver) Resolve(ctx context.Context, sessionID string) (*resolver.Resolution, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, sessionID)
	}
	return nil, nil
}

func managerResolution() *resolver.Resolution {
	return &resolver.Resolution{
		State: resolver.StateAuthenticated,
		Role:  model.RoleManager,
	}
}

func employeeResolution() *resolver.Resolution {
	return &resolver.Resolution{
		State: resolver.StateAuthenticated,
		Role:  model.RoleEmployee,
	}
}

func TestDashboardHandler_Dashboard(t *testing.T) {
	t.Run("管理者には全従業員と全タスクのビューを返す", func(t *testing.T) {
		roles := &mockRoleResolver{
			resolveFn: func(ctx context.Context, sessionID string) (*resolver.Resolution, error) {
				if sessionID != "sess-1" {
					t.Errorf("unexpected session ID: %s", sessionID)
				}
				return managerResolution(), nil
			},
		}
		employees := &mockEmployeeService{
			listFn: func(ctx context.Context) ([]*model.Employee, error) {
				return []*model.Employee{sampleEmployee()}, nil
			},
		}
		tasks := &mockTaskService{
			listAllFn: func(ctx context.Context) ([]*model.Task, error) {
				return []*model.Task{sampleTask()}, nil
			},
		}
		h := NewDashboardHandler(roles, employees, &mockSelfFinder{}, tasks)

		req := authenticatedRequest(http.MethodGet, "/api/dashboard", "")
		rec := httptest.NewRecorder()
		h.Dashboard(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		var resp dashboardResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.View != "manager" {
			t.Errorf("expected view manager, got %s", resp.View)
		}
		if len(resp.Employees) != 1 {
			t.Errorf("expected 1 employee, got %d", len(resp.Employees))
		}
		if len(resp.Tasks) != 1 {
			t.Errorf("expected 1 task, got %d", len(resp.Tasks))
		}
		if resp.Self != nil {
			t.Error("expected self to be absent in manager view")
		}
	})

	t.Run("従業員には自分のレコードと自分のタスクのビューを返す", func(t *testing.T) {
		roles := &mockRoleResolver{
			resolveFn: func(ctx context.Context, sessionID string) (*resolver.Resolution, error) {
				return employeeResolution(), nil
			},
		}
		self := &mockSelfFinder{
			findSelfFn: func(ctx context.Context, email string) (*model.Employee, error) {
				return sampleEmployee(), nil
			},
		}
		tasks := &mockTaskService{
			listByAssigneeFn: func(ctx context.Context, email string) ([]*model.Task, error) {
				if email != "taro@example.com" {
					t.Errorf("unexpected email: %s", email)
				}
				return []*model.Task{sampleTask()}, nil
			},
		}
		h := NewDashboardHandler(roles, &mockEmployeeService{}, self, tasks)

		req := authenticatedRequest(http.MethodGet, "/api/dashboard", "")
		rec := httptest.NewRecorder()
		h.Dashboard(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		var resp dashboardResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.View != "employee" {
			t.Errorf("expected view employee, got %s", resp.View)
		}
		if resp.Self == nil {
			t.Fatal("expected self to be present in employee view")
		}
		if resp.Self.Email != "taro@example.com" {
			t.Errorf("unexpected self email: %s", resp.Self.Email)
		}
		if len(resp.Employees) != 0 {
			t.Errorf("expected no employees in employee view, got %d", len(resp.Employees))
		}
		if len(resp.Tasks) != 1 {
			t.Errorf("expected 1 task, got %d", len(resp.Tasks))
		}
	})

	t.Run("役割未確定の場合は従業員ビューにフォールバックする", func(t *testing.T) {
		roles := &mockRoleResolver{
			resolveFn: func(ctx context.Context, sessionID string) (*resolver.Resolution, error) {
				// プロファイルのフェッチ失敗で役割が空のまま
				return &resolver.Resolution{State: resolver.StateAuthenticated}, nil
			},
		}
		self := &mockSelfFinder{
			findSelfFn: func(ctx context.Context, email string) (*model.Employee, error) {
				return sampleEmployee(), nil
			},
		}
		h := NewDashboardHandler(roles, &mockEmployeeService{}, self, &mockTaskService{})

		req := authenticatedRequest(http.MethodGet, "/api/dashboard", "")
		rec := httptest.NewRecorder()
		h.Dashboard(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		var resp dashboardResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.View != "employee" {
			t.Errorf("expected fallback to employee view, got %s", resp.View)
		}
	})

	t.Run("自分のレコード解決失敗は部分的エラーとして埋め込みタスクは返す", func(t *testing.T) {
		roles := &mockRoleResolver{
			resolveFn: func(ctx context.Context, sessionID string) (*resolver.Resolution, error) {
				return employeeResolution(), nil
			},
		}
		self := &mockSelfFinder{
			findSelfFn: func(ctx context.Context, email string) (*model.Employee, error) {
				return nil, model.NewRecordNotFoundError(email)
			},
		}
		tasks := &mockTaskService{
			listByAssigneeFn: func(ctx context.Context, email string) ([]*model.Task, error) {
				return []*model.Task{sampleTask()}, nil
			},
		}
		h := NewDashboardHandler(roles, &mockEmployeeService{}, self, tasks)

		req := authenticatedRequest(http.MethodGet, "/api/dashboard", "")
		rec := httptest.NewRecorder()
		h.Dashboard(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		var resp dashboardResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Self != nil {
			t.Error("expected self to be absent when resolution fails")
		}
		if resp.SelfError == nil {
			t.Fatal("expected self_error to be present")
		}
		if resp.SelfError.Code != model.ErrCodeRecordNotFound {
			t.Errorf("expected error code %s, got %s", model.ErrCodeRecordNotFound, resp.SelfError.Code)
		}
		if len(resp.Tasks) != 1 {
			t.Errorf("expected tasks to still be returned, got %d", len(resp.Tasks))
		}
	})

	t.Run("セッション情報なしで401エラー", func(t *testing.T) {
		h := NewDashboardHandler(&mockRoleResolver{}, &mockEmployeeService{}, &mockSelfFinder{}, &mockTaskService{})

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		rec := httptest.NewRecorder()
		h.Dashboard(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("役割解決の失敗で502エラー", func(t *testing.T) {
		roles := &mockRoleResolver{
			resolveFn: func(ctx context.Context, sessionID string) (*resolver.Resolution, error) {
				return nil, model.NewStoreOperationError()
			},
		}
		h := NewDashboardHandler(roles, &mockEmployeeService{}, &mockSelfFinder{}, &mockTaskService{})

		req := authenticatedRequest(http.MethodGet, "/api/dashboard", "")
		rec := httptest.NewRecorder()
		h.Dashboard(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}
	})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Techlead-ANKAN/ems/internal/metrics"
	"github.com/Techlead-ANKAN/ems/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	RoleResolver      middleware.RoleResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	HTTPRecorder      middleware.HTTPRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 従業員・タスク
	EmployeeService EmployeeServiceInterface
	SelfFinder      SelfFinder
	TaskService     TaskServiceInterface

	// メトリクス公開
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → CSRF → Session → RateLimit(General)
//
// 認証ルート（/auth/*）と/health、/metricsはセッションミドルウェアの外に配置する。
// /api/employeesと/api/tasksは管理者専用。/api/me/*と/api/dashboardは認証のみ必要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPRecorder))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	employeeHandler := NewEmployeeHandler(deps.EmployeeService)
	taskHandler := NewTaskHandler(deps.TaskService)
	meHandler := NewMeHandler(deps.SelfFinder, deps.TaskService)
	dashboardHandler := NewDashboardHandler(deps.RoleResolver, deps.EmployeeService, deps.SelfFinder, deps.TaskService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		// ログインは未認証のためIP単位のレート制限を適用
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		} else {
			r.Post("/login", authHandler.Login)
		}
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: CSRF → Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 役割に応じたダッシュボードビュー
		r.Get("/api/dashboard", dashboardHandler.Dashboard)

		// 従業員自身のビュー
		r.Route("/api/me", func(r chi.Router) {
			r.Get("/employee", meHandler.MyEmployee)
			r.Get("/tasks", meHandler.MyTasks)
			r.Patch("/tasks/{id}/status", meHandler.UpdateMyTaskStatus)
		})

		// --- 管理者専用ルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireManagerMiddleware(deps.RoleResolver))

			r.Route("/api/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListEmployees)
				r.Post("/", employeeHandler.CreateEmployee)
				r.Put("/{id}", employeeHandler.UpdateEmployee)
			})

			r.Route("/api/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})
		})
	})

	return r
}

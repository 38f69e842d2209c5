package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Techlead-ANKAN/ems/internal/model"
	"github.com/Techlead-ANKAN/ems/internal/resolver"
)

// RoleResolver はセッションIDから役割解決結果を取得するインターフェース。
type RoleResolver interface {
	Resolve(ctx context.Context, sessionID string) (*resolver.Resolution, error)
}

// NewRequireManagerMiddleware は管理者のみ通過を許可するミドルウェアを返す。
// セッションミドルウェアの後に配置する。
// 役割が未確定の場合も非特権として403を返す。
func NewRequireManagerMiddleware(roles RoleResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := SessionIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			res, err := roles.Resolve(r.Context(), sessionID)
			if err != nil {
				slog.Error("failed to resolve role",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusInternalServerError, model.NewStoreOperationError())
				return
			}

			if !res.IsManager() {
				slog.Warn("manager-only route denied",
					slog.String("session_id", sessionID),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Techlead-ANKAN/ems/internal/middleware"
	"github.com/Techlead-ANKAN/ems/internal/model"
)

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// 生のバックエンドエラーはログのみに記録し、ユーザーには一般的なメッセージを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAuthFailed:
		return http.StatusUnauthorized
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeRecordNotFound, model.ErrCodeEmployeeNotFound, model.ErrCodeTaskNotFound:
		return http.StatusNotFound
	case model.ErrCodeAmbiguousRecord:
		return http.StatusConflict
	case model.ErrCodeInvalidRole, model.ErrCodeInvalidStatus,
		model.ErrCodeInvalidDueDate, model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case model.ErrCodeStoreOperation:
		return http.StatusBadGateway
	case model.ErrCodeConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

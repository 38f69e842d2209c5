// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// 生のバックエンドエラーはログのみに記録し、ユーザー向けには
// 短い一般的なメッセージを返す。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, store, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthFailed        = "AUTH_FAILED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeRecordNotFound    = "RECORD_NOT_FOUND"
	ErrCodeAmbiguousRecord   = "AMBIGUOUS_RECORD"
	ErrCodeEmployeeNotFound  = "EMPLOYEE_NOT_FOUND"
	ErrCodeTaskNotFound      = "TASK_NOT_FOUND"
	ErrCodeInvalidRole       = "INVALID_ROLE"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidDueDate    = "INVALID_DUE_DATE"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeStoreOperation    = "STORE_OPERATION_FAILED"
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
)

// NewAuthFailedError は認証失敗エラーを生成する。
// 入力されたメールアドレスはメッセージに含めない。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewRecordNotFoundError は自分の従業員レコードが見つからない場合のエラーを生成する。
func NewRecordNotFoundError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeRecordNotFound,
		Message:  fmt.Sprintf("メールアドレスに対応する従業員レコードが見つかりません: %s", email),
		Category: "store",
		Action:   "管理者に従業員レコードの登録を依頼してください。",
	}
}

// NewAmbiguousRecordError は自分の従業員レコードが複数件一致した場合のエラーを生成する。
func NewAmbiguousRecordError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeAmbiguousRecord,
		Message:  fmt.Sprintf("メールアドレスに対応する従業員レコードが複数存在します: %s", email),
		Category: "store",
		Action:   "管理者に重複レコードの解消を依頼してください。",
	}
}

// NewEmployeeNotFoundError は従業員未検出エラーを生成する。
func NewEmployeeNotFoundError(employeeID string) *APIError {
	return &APIError{
		Code:     ErrCodeEmployeeNotFound,
		Message:  fmt.Sprintf("指定された従業員が見つかりません: %s", employeeID),
		Category: "store",
		Action:   "従業員IDを確認してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "store",
		Action:   "タスクIDを確認してください。",
	}
}

// NewInvalidRoleError は無効な役割エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効な役割です: %s", role),
		Category: "validation",
		Action:   "役割には employee または manager を指定してください。",
	}
}

// NewInvalidStatusError は無効なステータスエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "指定可能なステータス値を確認してください。",
	}
}

// NewInvalidDueDateError は無効な期日エラーを生成する。
func NewInvalidDueDateError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDueDate,
		Message:  fmt.Sprintf("無効な期日です: %s", value),
		Category: "validation",
		Action:   "期日は YYYY-MM-DD 形式で指定してください。",
	}
}

// NewValidationFailedError は入力検証エラーを生成する。
func NewValidationFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewStoreOperationError はストア操作失敗エラーを生成する。
// 原因の詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewStoreOperationError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreOperation,
		Message:  "データストアへの操作に失敗しました。",
		Category: "store",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewConfigurationError は設定不備エラーを生成する。
// 起動時の警告ログに使用する。致命的ではないが、以降のストア操作は失敗する。
func NewConfigurationError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeConfiguration,
		Message:  fmt.Sprintf("必要な設定値が未設定です: %s", name),
		Category: "system",
		Action:   "環境変数を設定してサーバーを再起動してください。",
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Techlead-ANKAN/ems/internal/model"
)

type mockAuthService struct {
	signInFn     func(ctx context.Context, email, password string) (*model.Session, error)
	signOutFn    func(ctx context.Context, sessionID string) error
	getSessionFn func(ctx context.Context, sessionID string) (*model.Session, error)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, sessionID string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if m.getSessionFn != nil {
		return m.getSessionFn(ctx, sessionID)
	}
	return nil, nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieDomain:  "",
		CookieSecure:  false,
		SessionMaxAge: 3600,
	}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("正常なログインでセッションCookieが設定される", func(t *testing.T) {
		service := &mockAuthService{
			signInFn: func(ctx context.Context, email, password string) (*model.Session, error) {
				if email != "taro@example.com" {
					t.Errorf("unexpected email: %s", email)
				}
				return &model.Session{
					ID:        "sess-1",
					UserID:    "user-1",
					Email:     email,
					ExpiresAt: time.Now().Add(time.Hour),
				}, nil
			},
		}
		h := NewAuthHandler(service, testAuthConfig())

		body := `{"email":"taro@example.com","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		cookie := findCookie(t, rec, "session_id")
		if cookie == nil {
			t.Fatal("expected session cookie to be set")
		}
		if cookie.Value != "sess-1" {
			t.Errorf("expected cookie value sess-1, got %s", cookie.Value)
		}
		if !cookie.HttpOnly {
			t.Error("expected session cookie to be HttpOnly")
		}

		var resp sessionResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.UserID != "user-1" {
			t.Errorf("expected user_id user-1, got %s", resp.UserID)
		}
		if resp.Email != "taro@example.com" {
			t.Errorf("expected email taro@example.com, got %s", resp.Email)
		}
	})

	t.Run("不正なJSONで400エラー", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{invalid"))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("メールアドレスまたはパスワードが空で400エラー", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"","password":"secret123"}`))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("認証失敗で401エラー", func(t *testing.T) {
		service := &mockAuthService{
			signInFn: func(ctx context.Context, email, password string) (*model.Session, error) {
				return nil, model.NewAuthFailedError()
			},
		}
		h := NewAuthHandler(service, testAuthConfig())

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"taro@example.com","password":"wrong"}`))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}

		var errResp struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if errResp.Code != model.ErrCodeAuthFailed {
			t.Errorf("expected error code %s, got %s", model.ErrCodeAuthFailed, errResp.Code)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("セッションを破棄しCookieをクリアする", func(t *testing.T) {
		signedOut := false
		service := &mockAuthService{
			signOutFn: func(ctx context.Context, sessionID string) error {
				if sessionID != "sess-1" {
					t.Errorf("unexpected session ID: %s", sessionID)
				}
				signedOut = true
				return nil
			},
		}
		h := NewAuthHandler(service, testAuthConfig())

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
		rec := httptest.NewRecorder()
		h.Logout(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", rec.Code)
		}
		if !signedOut {
			t.Error("expected SignOut to be called")
		}

		cookie := findCookie(t, rec, "session_id")
		if cookie == nil {
			t.Fatal("expected session cookie to be cleared")
		}
		if cookie.MaxAge != -1 {
			t.Errorf("expected cookie MaxAge -1, got %d", cookie.MaxAge)
		}
	})

	t.Run("Cookieなしでも204を返す", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rec := httptest.NewRecorder()
		h.Logout(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", rec.Code)
		}
	})

	t.Run("サインアウト失敗でもCookieはクリアされる", func(t *testing.T) {
		service := &mockAuthService{
			signOutFn: func(ctx context.Context, sessionID string) error {
				return model.NewStoreOperationError()
			},
		}
		h := NewAuthHandler(service, testAuthConfig())

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
		rec := httptest.NewRecorder()
		h.Logout(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", rec.Code)
		}
		if cookie := findCookie(t, rec, "session_id"); cookie == nil || cookie.MaxAge != -1 {
			t.Error("expected session cookie to be cleared even on sign out failure")
		}
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("有効なセッションでユーザー情報を返す", func(t *testing.T) {
		service := &mockAuthService{
			getSessionFn: func(ctx context.Context, sessionID string) (*model.Session, error) {
				return &model.Session{
					ID:     sessionID,
					UserID: "user-1",
					Email:  "taro@example.com",
				}, nil
			},
		}
		h := NewAuthHandler(service, testAuthConfig())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		var resp sessionResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Email != "taro@example.com" {
			t.Errorf("expected email taro@example.com, got %s", resp.Email)
		}
	})

	t.Run("Cookieなしで401エラー", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("セッションが見つからない場合401エラー", func(t *testing.T) {
		service := &mockAuthService{
			getSessionFn: func(ctx context.Context, sessionID string) (*model.Session, error) {
				return nil, nil
			},
		}
		h := NewAuthHandler(service, testAuthConfig())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "expired"})
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}

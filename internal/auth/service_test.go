package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Techlead-ANKAN/ems/internal/model"
)

// --- モック ---

type mockCredRepo struct {
	findByEmailFn func(ctx context.Context, email string) (*model.Credential, error)
}

func (m *mockCredRepo) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

type mockSessionRepo struct {
	createFn         func(ctx context.Context, session *model.Session) error
	findByIDFn       func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn     func(ctx context.Context, id string) error
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

func credentialFor(t *testing.T, userID, email, password string) *model.Credential {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &model.Credential{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
}

// --- テスト ---

// 正しい認証情報でセッションが発行され、SIGNED_INイベントが届くことを検証
func TestService_SignIn_Success(t *testing.T) {
	cred := credentialFor(t, "user-1", "taro@example.com", "secret")
	var saved *model.Session

	svc := NewService(
		&mockCredRepo{
			findByEmailFn: func(ctx context.Context, email string) (*model.Credential, error) {
				if email != "taro@example.com" {
					t.Errorf("email = %q, want %q", email, "taro@example.com")
				}
				return cred, nil
			},
		},
		&mockSessionRepo{
			createFn: func(ctx context.Context, session *model.Session) error {
				saved = session
				return nil
			},
		},
		NewNotifier(),
		nil,
		ServiceConfig{SessionMaxAge: 3600},
	)

	var gotEvent *SessionEvent
	unsubscribe := svc.Notifier().Subscribe(func(ev SessionEvent) {
		gotEvent = &ev
	})
	defer unsubscribe()

	session, err := svc.SignIn(context.Background(), "taro@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if session == nil {
		t.Fatal("expected non-nil session")
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want %q", session.UserID, "user-1")
	}
	if session.Email != "taro@example.com" {
		t.Errorf("session.Email = %q, want %q", session.Email, "taro@example.com")
	}
	if saved == nil || saved.ID != session.ID {
		t.Error("session should be persisted before being returned")
	}
	if gotEvent == nil {
		t.Fatal("expected SIGNED_IN event")
	}
	if gotEvent.Type != EventSignedIn {
		t.Errorf("event type = %q, want %q", gotEvent.Type, EventSignedIn)
	}
	if gotEvent.Session == nil || gotEvent.Session.ID != session.ID {
		t.Error("SIGNED_IN event should carry the new session")
	}
}

// パスワード不一致時はセッションが発行されないことを検証
func TestService_SignIn_WrongPassword(t *testing.T) {
	cred := credentialFor(t, "user-1", "taro@example.com", "secret")
	created := false

	svc := NewService(
		&mockCredRepo{
			findByEmailFn: func(ctx context.Context, email string) (*model.Credential, error) {
				return cred, nil
			},
		},
		&mockSessionRepo{
			createFn: func(ctx context.Context, session *model.Session) error {
				created = true
				return nil
			},
		},
		NewNotifier(),
		nil,
		ServiceConfig{SessionMaxAge: 3600},
	)

	session, err := svc.SignIn(context.Background(), "taro@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	if session != nil {
		t.Error("session must remain nil on failed sign-in")
	}
	if created {
		t.Error("no session should be persisted on failed sign-in")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAuthFailed {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeAuthFailed)
	}
}

// 未登録メールアドレスでもパスワード不一致と同一のエラーになることを検証
func TestService_SignIn_UnknownEmail_SameError(t *testing.T) {
	svc := NewService(
		&mockCredRepo{},
		&mockSessionRepo{},
		NewNotifier(),
		nil,
		ServiceConfig{SessionMaxAge: 3600},
	)

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "secret")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAuthFailed {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeAuthFailed)
	}
}

// セッションを特定できない場合も当該セッション行が削除され、
// SIGNED_OUTイベントが届くことを検証
func TestService_SignOut(t *testing.T) {
	deleted := ""
	svc := NewService(
		&mockCredRepo{},
		&mockSessionRepo{
			deleteByIDFn: func(ctx context.Context, id string) error {
				deleted = id
				return nil
			},
		},
		NewNotifier(),
		nil,
		ServiceConfig{SessionMaxAge: 3600},
	)

	var gotEvent *SessionEvent
	unsubscribe := svc.Notifier().Subscribe(func(ev SessionEvent) {
		gotEvent = &ev
	})
	defer unsubscribe()

	if err := svc.SignOut(context.Background(), "sess-1"); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if deleted != "sess-1" {
		t.Errorf("deleted session = %q, want %q", deleted, "sess-1")
	}
	if gotEvent == nil {
		t.Fatal("expected SIGNED_OUT event")
	}
	if gotEvent.Type != EventSignedOut {
		t.Errorf("event type = %q, want %q", gotEvent.Type, EventSignedOut)
	}
	if gotEvent.Session != nil {
		t.Error("SIGNED_OUT event should carry a nil session")
	}
	if gotEvent.SessionID != "sess-1" {
		t.Errorf("event session ID = %q, want %q", gotEvent.SessionID, "sess-1")
	}
}

// サインアウトで同一ユーザーの全セッションが破棄されることを検証（全端末サインアウト）
func TestService_SignOut_RevokesAllUserSessions(t *testing.T) {
	deletedUserID := ""
	deletedByID := false
	svc := NewService(
		&mockCredRepo{},
		&mockSessionRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
				return &model.Session{
					ID:        id,
					UserID:    "user-1",
					Email:     "taro@example.com",
					ExpiresAt: time.Now().Add(time.Hour),
				}, nil
			},
			deleteByUserIDFn: func(ctx context.Context, userID string) error {
				deletedUserID = userID
				return nil
			},
			deleteByIDFn: func(ctx context.Context, id string) error {
				deletedByID = true
				return nil
			},
		},
		NewNotifier(),
		nil,
		ServiceConfig{SessionMaxAge: 3600},
	)

	if err := svc.SignOut(context.Background(), "sess-1"); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if deletedUserID != "user-1" {
		t.Errorf("deleted user = %q, want %q", deletedUserID, "user-1")
	}
	if deletedByID {
		t.Error("DeleteByID should not be called when the user is known")
	}
}

func TestService_SignOut_EmptySessionID(t *testing.T) {
	svc := NewService(&mockCredRepo{}, &mockSessionRepo{}, NewNotifier(), nil, ServiceConfig{})
	if err := svc.SignOut(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

// GetSessionが空IDでnilを返し、リポジトリを呼ばないことを検証
func TestService_GetSession_EmptyID(t *testing.T) {
	called := false
	svc := NewService(
		&mockCredRepo{},
		&mockSessionRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
				called = true
				return nil, nil
			},
		},
		NewNotifier(),
		nil,
		ServiceConfig{},
	)

	session, err := svc.GetSession(context.Background(), "")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session != nil {
		t.Error("expected nil session for empty ID")
	}
	if called {
		t.Error("repository should not be called for empty ID")
	}
}

// --- Notifier ---

func TestNotifier_SubscribeAndUnsubscribe(t *testing.T) {
	n := NewNotifier()

	count := 0
	unsubscribe := n.Subscribe(func(ev SessionEvent) { count++ })

	n.Publish(SessionEvent{Type: EventSignedIn, SessionID: "s1"})
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	unsubscribe()
	n.Publish(SessionEvent{Type: EventSignedOut, SessionID: "s1"})
	if count != 1 {
		t.Errorf("count after unsubscribe = %d, want 1", count)
	}

	if n.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n.SubscriberCount())
	}

	// 解除は冪等
	unsubscribe()
}

func TestNotifier_MultipleSubscribers(t *testing.T) {
	n := NewNotifier()

	got1, got2 := 0, 0
	defer n.Subscribe(func(ev SessionEvent) { got1++ })()
	defer n.Subscribe(func(ev SessionEvent) { got2++ })()

	n.Publish(SessionEvent{Type: EventSignedIn, SessionID: "s1"})

	if got1 != 1 || got2 != 1 {
		t.Errorf("subscriber counts = %d, %d, want 1, 1", got1, got2)
	}
}

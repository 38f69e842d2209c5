// Package auth はメールアドレス＋パスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/Techlead-ANKAN/ems/internal/model"
	"github.com/Techlead-ANKAN/ems/internal/repository"
)

// LoginRecorder はログイン試行結果のメトリクス記録インターフェース。
type LoginRecorder interface {
	RecordLogin(success bool)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
// サインイン・サインアウト時にNotifier経由でセッション変更イベントを発行する。
type Service struct {
	credRepo    repository.CredentialRepository
	sessionRepo repository.SessionRepository
	notifier    *Notifier
	recorder    LoginRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
// recorderはnil可（メトリクスを記録しない）。
func NewService(
	credRepo repository.CredentialRepository,
	sessionRepo repository.SessionRepository,
	notifier *Notifier,
	recorder LoginRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		credRepo:    credRepo,
		sessionRepo: sessionRepo,
		notifier:    notifier,
		recorder:    recorder,
		config:      config,
	}
}

// Notifier はセッション変更通知ストリームを返す。
func (s *Service) Notifier() *Notifier {
	return s.notifier
}

// SignIn はメールアドレスとパスワードでサインインし、セッションを発行する。
// 認証情報が存在しない場合とパスワード不一致の場合は区別せず
// 同一のAuthErrorを返す（列挙攻撃対策）。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	cred, err := s.credRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	if cred == nil {
		s.recordLogin(false)
		return nil, model.NewAuthFailedError()
	}

	if err := CheckPassword(cred.PasswordHash, password); err != nil {
		s.recordLogin(false)
		slog.Warn("sign-in rejected",
			slog.String("user_id", cred.UserID),
		)
		return nil, model.NewAuthFailedError()
	}

	session, err := s.createSession(ctx, cred.UserID, cred.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordLogin(true)
	slog.Info("user signed in",
		slog.String("user_id", cred.UserID),
	)

	if s.notifier != nil {
		s.notifier.Publish(SessionEvent{
			Type:      EventSignedIn,
			SessionID: session.ID,
			Session:   session,
		})
	}

	return session, nil
}

// SignOut はセッションを破棄し、SIGNED_OUTイベントを発行する。
// セッションが特定できた場合は同一ユーザーの全セッションをまとめて破棄する
// （全端末サインアウト）。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to find session: %w", err)
	}

	if session != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, session.UserID); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}
		slog.Info("user signed out",
			slog.String("session_id", sessionID),
			slog.String("user_id", session.UserID),
		)
	} else {
		// 期限切れ等でセッションを特定できない場合も当該行は消しておく
		if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		slog.Info("user signed out", slog.String("session_id", sessionID))
	}

	if s.notifier != nil {
		s.notifier.Publish(SessionEvent{
			Type:      EventSignedOut,
			SessionID: sessionID,
			Session:   nil,
		})
	}

	return nil
}

// GetSession は有効なセッションを取得する。
// 存在しない、または期限切れの場合はnilを返す。
func (s *Service) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID, email string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// recordLogin はログイン試行結果をメトリクスに記録する。
func (s *Service) recordLogin(success bool) {
	if s.recorder != nil {
		s.recorder.RecordLogin(success)
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

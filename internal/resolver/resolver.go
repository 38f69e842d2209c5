// Package resolver はセッションから役割を解決する状態機械を提供する。
//
// 状態遷移: Unresolved → Loading → (Authenticated{role} | Anonymous)
//
// 解決結果はセッションIDごとにキャッシュされ、セッション変更通知を
// 受け取ると破棄して最初から解決し直す。通知と進行中のフェッチが
// 競合した場合、フェッチ開始時点の世代で結果を検証し、
// 追い越されたセッションに対する結果は破棄する。
package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/Techlead-ANKAN/ems/internal/auth"
	"github.com/Techlead-ANKAN/ems/internal/model"
)

// State は解決の進行状態を表す。
type State string

const (
	// StateUnresolved は未解決の初期状態。
	StateUnresolved State = "unresolved"
	// StateLoading はセッション・プロファイルのフェッチ中の状態。
	StateLoading State = "loading"
	// StateAuthenticated は認証済みの最終状態。役割は未確定の場合がある。
	StateAuthenticated State = "authenticated"
	// StateAnonymous は未認証の最終状態。
	StateAnonymous State = "anonymous"
)

// SessionFinder はセッション取得に必要なインターフェース。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// ProfileFinder はプロファイル取得に必要なインターフェース。
type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// Resolution はセッションIDに対する解決結果を表す。
type Resolution struct {
	State   State
	Session *model.Session
	Profile *model.Profile
	// Role は解決済みの役割。プロファイルのフェッチ失敗や行の欠落では
	// 空のまま（未確定）となり、非特権側として扱われる。
	Role model.Role
}

// IsManager は解決結果が管理者ビューを選択すべきかを返す。
// "manager" が唯一の特権タグであり、未確定を含む他のすべての値は
// 従業員ビュー側に倒す。
func (r *Resolution) IsManager() bool {
	return r != nil && r.Role == model.RoleManager
}

// Resolver はセッションIDごとの役割解決とキャッシュを管理する。
type Resolver struct {
	sessions SessionFinder
	profiles ProfileFinder

	mu      sync.Mutex
	cache   map[string]*Resolution
	gen     map[string]uint64
	pending map[string]int

	unsubscribe func()
}

// New はResolverを生成し、notifierの購読を開始する。
// notifierはnil可（通知による無効化を行わない）。
// 使用終了時はClose()で購読を解除すること。
func New(sessions SessionFinder, profiles ProfileFinder, notifier *auth.Notifier) *Resolver {
	r := &Resolver{
		sessions: sessions,
		profiles: profiles,
		cache:    make(map[string]*Resolution),
		gen:      make(map[string]uint64),
		pending:  make(map[string]int),
	}

	if notifier != nil {
		r.unsubscribe = notifier.Subscribe(func(ev auth.SessionEvent) {
			r.Invalidate(ev.SessionID)
		})
	}

	return r
}

// Close はnotifierの購読を解除する。冪等。
func (r *Resolver) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

// StateOf は指定セッションIDの現在の解決状態を返す。
// 一度も解決していなければUnresolved、フェッチ中はLoadingを返す。
func (r *Resolver) StateOf(sessionID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.cache[sessionID]; ok {
		return res.State
	}
	if r.pending[sessionID] > 0 {
		return StateLoading
	}
	return StateUnresolved
}

// Invalidate は指定セッションIDのキャッシュ済み解決結果を破棄する。
// 進行中のフェッチは世代番号の不一致により結果が破棄され、解決し直される。
// フェッチが進行中でなければ世代エントリ自体も破棄する。
func (r *Resolver) Invalidate(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, sessionID)
	if r.pending[sessionID] > 0 {
		r.gen[sessionID]++
	} else {
		delete(r.gen, sessionID)
	}
}

// Resolve はセッションIDから解決結果を返す。
// キャッシュがあればそれを返し、なければセッション→プロファイルの順に
// フェッチする。フェッチ中に世代が進んだ場合は結果を破棄して再解決する。
// セッションが存在しない・期限切れの場合はAnonymousを返す。
// プロファイルのフェッチ失敗・行の欠落は役割未確定のAuthenticatedとなる。
func (r *Resolver) Resolve(ctx context.Context, sessionID string) (*Resolution, error) {
	if sessionID == "" {
		return &Resolution{State: StateAnonymous}, nil
	}

	for {
		r.mu.Lock()
		if res, ok := r.cache[sessionID]; ok {
			r.mu.Unlock()
			return res, nil
		}
		startGen := r.gen[sessionID]
		r.pending[sessionID]++
		r.mu.Unlock()

		res, err := r.fetch(ctx, sessionID)

		r.mu.Lock()
		r.pending[sessionID]--
		stale := r.gen[sessionID] != startGen
		if r.pending[sessionID] == 0 {
			// 最後のフェッチが抜けたら世代の追跡は不要になる
			delete(r.pending, sessionID)
			delete(r.gen, sessionID)
		}
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		if stale {
			// フェッチ中にセッション変更通知が割り込んだ。
			// 追い越された結果は破棄して解決し直す。
			r.mu.Unlock()
			continue
		}
		r.cache[sessionID] = res
		r.mu.Unlock()
		return res, nil
	}
}

// fetch はセッションとプロファイルをストアから取得して解決結果を構築する。
func (r *Resolver) fetch(ctx context.Context, sessionID string) (*Resolution, error) {
	session, err := r.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if session == nil {
		return &Resolution{State: StateAnonymous}, nil
	}

	res := &Resolution{
		State:   StateAuthenticated,
		Session: session,
	}

	profile, err := r.profiles.FindByID(ctx, session.UserID)
	if err != nil || profile == nil {
		// プロファイルのフェッチ失敗・行の欠落は役割未確定として扱う。
		// ビュー選択側が非特権ブランチにフォールバックする。
		return res, nil
	}

	res.Profile = profile
	res.Role = profile.Role
	return res, nil
}

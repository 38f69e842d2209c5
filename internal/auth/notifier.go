package auth

import (
	"sync"

	"github.com/Techlead-ANKAN/ems/internal/model"
)

// SessionEventType はセッション変更イベントの種別を表す。
type SessionEventType string

const (
	// EventSignedIn はサインイン成功イベント。
	EventSignedIn SessionEventType = "SIGNED_IN"
	// EventSignedOut はサインアウトイベント。
	EventSignedOut SessionEventType = "SIGNED_OUT"
)

// SessionEvent はセッション変更通知のペイロードを表す。
// SIGNED_OUTの場合、Sessionはnilとなり、SessionIDのみが有効。
type SessionEvent struct {
	Type      SessionEventType
	SessionID string
	Session   *model.Session
}

// Notifier はセッション変更の通知ストリームを提供する。
// 購読者のコールバックは発行元のゴルーチンで同期的に呼び出される。
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(SessionEvent)
}

// NewNotifier はNotifierを生成する。
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[int]func(SessionEvent)),
	}
}

// Subscribe はセッション変更イベントの購読を開始する。
// 戻り値の関数を呼ぶと購読を解除する。解除は冪等。
func (n *Notifier) Subscribe(fn func(SessionEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// SubscriberCount は現在の購読者数を返す。テスト用。
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Publish は全購読者にイベントを配信する。
// コールバック実行中のSubscribe/unsubscribeとデッドロックしないよう、
// 配信先のスナップショットを取ってからロック外で呼び出す。
func (n *Notifier) Publish(event SessionEvent) {
	n.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

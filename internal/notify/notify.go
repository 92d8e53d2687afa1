// Package notify fans session change notifications out to subscribers, either
// within one process or across processes through Redis pub/sub.
package notify

import (
	"context"
	"strings"
	"sync"
)

// Hub publishes and subscribes to per-session change notifications.
type Hub interface {
	Publish(ctx context.Context, sessionID string) error
	Subscribe(ctx context.Context, sessionID string) (*Subscription, error)
	Close() error
}

// Subscription delivers a signal on C after each change. Signals coalesce: a
// slow reader sees at least one signal after the last change, not one per change.
type Subscription struct {
	C <-chan struct{}

	once    sync.Once
	closeFn func()
}

// Close stops delivery. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.closeFn != nil {
			s.closeFn()
		}
	})
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Local is an in-process Hub.
type Local struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewLocal() *Local {
	return &Local{subs: make(map[string]map[chan struct{}]struct{})}
}

func (l *Local) Publish(_ context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs[sessionID] {
		signal(ch)
	}
	return nil
}

func (l *Local) Subscribe(_ context.Context, sessionID string) (*Subscription, error) {
	sessionID = strings.TrimSpace(sessionID)
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	if l.subs[sessionID] == nil {
		l.subs[sessionID] = make(map[chan struct{}]struct{})
	}
	l.subs[sessionID][ch] = struct{}{}
	l.mu.Unlock()

	return &Subscription{C: ch, closeFn: func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs[sessionID], ch)
		if len(l.subs[sessionID]) == 0 {
			delete(l.subs, sessionID)
		}
	}}, nil
}

// Subscribers returns the number of live subscriptions for a session.
func (l *Local) Subscribers(sessionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs[strings.TrimSpace(sessionID)])
}

func (l *Local) Close() error { return nil }

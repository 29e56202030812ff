package auth

import (
	"context"
	"sync"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// Gateway holds the signed-in session of one client process and notifies
// listeners on every transition.
type Gateway struct {
	*Authenticator

	mu        sync.Mutex
	current   *domain.Session
	nextID    int
	listeners map[int]chan *domain.Session
}

// NewGateway wraps an authenticator.
func NewGateway(a *Authenticator) *Gateway {
	return &Gateway{Authenticator: a, listeners: make(map[int]chan *domain.Session)}
}

// SignIn authenticates and makes the result the current session.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := g.Authenticator.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.setSession(session)
	return copySession(session), nil
}

// SignUp registers and makes the new account the current session.
func (g *Gateway) SignUp(ctx context.Context, email, password string, profile Profile) (*domain.Session, error) {
	session, err := g.Authenticator.SignUp(ctx, email, password, profile)
	if err != nil {
		return nil, err
	}
	g.setSession(session)
	return copySession(session), nil
}

// SignOut clears the current session.
func (g *Gateway) SignOut() {
	g.setSession(nil)
}

// CurrentSession returns a copy of the current session, or nil.
func (g *Gateway) CurrentSession() *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copySession(g.current)
}

// ChangePassword changes the password of the current session.
func (g *Gateway) ChangePassword(ctx context.Context, current, next string) error {
	session := g.CurrentSession()
	if session == nil {
		return errorutil.NewUnauthorized("not signed in")
	}
	return g.Authenticator.ChangePassword(ctx, session, current, next)
}

// OnSessionChange subscribes to session transitions. The current state is
// delivered first; a nil value means signed out.
func (g *Gateway) OnSessionChange() *SessionSubscription {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	ch := make(chan *domain.Session, 1)
	ch <- copySession(g.current)
	g.listeners[id] = ch
	return &SessionSubscription{ch: ch, cancel: func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.listeners, id)
		close(ch)
	}}
}

func (g *Gateway) setSession(session *domain.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil && session == nil {
		return
	}
	g.current = copySession(session)
	for _, ch := range g.listeners {
		offer(ch, copySession(session))
	}
}

// offer replaces an undelivered value so slow listeners see the latest state.
// Callers hold the gateway lock, so nothing else sends on ch meanwhile.
func offer(ch chan *domain.Session, session *domain.Session) {
	select {
	case ch <- session:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- session
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// SessionSubscription delivers session transitions until closed.
type SessionSubscription struct {
	ch     chan *domain.Session
	once   sync.Once
	cancel func()
}

// Events is closed after Close.
func (s *SessionSubscription) Events() <-chan *domain.Session {
	return s.ch
}

// Close stops delivery. Safe to call more than once.
func (s *SessionSubscription) Close() {
	s.once.Do(s.cancel)
}

// Package identity is the Identity Gate of the client: it answers "who is
// signed in, if anyone" and announces sign-out to its subscribers.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoUser = errors.New("token carries no user")

// Identity is the signed-in owner.
type Identity struct {
	UserID   string
	Username string
	// ExpiresAt is zero for tokens without expiry.
	ExpiresAt time.Time
}

// Gate is consumed by the sync engine.
type Gate interface {
	// CurrentUser returns nil when nobody is signed in or the session expired.
	CurrentUser() *Identity
	// OnSignOut registers fn to run on every sign-out, in registration order.
	OnSignOut(fn func(ctx context.Context))
}

// claims mirrors the payload issued by the server.
type claims struct {
	jwt.RegisteredClaims
	UserID   string
	Username string
}

// Session is a Gate backed by an access token. It is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	token string
	user  *Identity
	subs  []func(ctx context.Context)

	// closing is set while sign-out subscribers run. gen counts sign-ins.
	closing bool
	gen     uint64

	now func() time.Time
}

var _ Gate = (*Session)(nil)

func NewSession() *Session {
	return &Session{now: time.Now}
}

// SignIn reads the identity from token. The signature is not checked here;
// the server verifies it on every call.
func (s *Session) SignIn(token string) (*Identity, error) {
	id, err := parse(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = id
	s.closing = false
	s.gen++

	out := *id
	return &out, nil
}

func parse(token string) (*Identity, error) {
	c := &claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, c); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	userID := c.UserID
	if userID == "" {
		userID = c.Subject
	}
	if userID == "" {
		return nil, ErrNoUser
	}
	id := &Identity{UserID: userID, Username: c.Username}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}

// CurrentUser returns nil as soon as sign-out starts.
func (s *Session) CurrentUser() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing || !s.activeLocked() {
		return nil
	}
	out := *s.user
	return &out
}

// Token returns the access token of an active session, or "". The token
// stays readable while sign-out subscribers run so they can still reach the
// server.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return ""
	}
	return s.token
}

func (s *Session) activeLocked() bool {
	if s.user == nil {
		return false
	}
	return s.user.ExpiresAt.IsZero() || s.now().Before(s.user.ExpiresAt)
}

func (s *Session) OnSignOut(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// SignOut runs the sign-out subscribers and then forgets the token. Expired
// sessions still notify. Without a session, or while a sign-out is already
// running, it does nothing. A subscriber that signs in again keeps the new
// session.
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	if s.user == nil || s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	gen := s.gen
	subs := append([]func(ctx context.Context){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.token, s.user, s.closing = "", nil, false
	}
}

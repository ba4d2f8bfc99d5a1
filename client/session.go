package client

import (
	"context"
	"sync"
)

// SessionState is the three-valued auth state. A bare boolean cannot tell
// "still validating" apart from "logged out", which is what causes protected
// content to flash before the first validation resolves.
type SessionState string

const (
	StateUnknown         SessionState = "unknown"
	StateAuthenticated   SessionState = "authenticated"
	StateUnauthenticated SessionState = "unauthenticated"
)

// Session tracks whether the admin is logged in. It owns the only writes to
// the credential store besides the client's 401 handler.
type Session struct {
	client *Client

	mu    sync.RWMutex
	state SessionState
}

func NewSession(client *Client) *Session {
	return &Session{
		client: client,
		state:  StateUnknown,
	}
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start resolves the initial state. With no stored token it settles on
// unauthenticated without a network call; otherwise the token is validated
// once, and any failure, network or rejection, clears it.
func (s *Session) Start(ctx context.Context) SessionState {
	if s.client.Tokens().Token() == "" {
		return s.setState(StateUnauthenticated)
	}

	valid, err := s.client.Validate(ctx)
	if err != nil || !valid {
		s.client.Tokens().Clear()
		return s.setState(StateUnauthenticated)
	}
	return s.setState(StateAuthenticated)
}

// Login attempts the admin password. Failures resolve to false, never to an
// error, so the caller only decides what message to show.
func (s *Session) Login(ctx context.Context, password string) bool {
	if _, err := s.client.Login(ctx, password); err != nil {
		s.setState(StateUnauthenticated)
		return false
	}
	s.setState(StateAuthenticated)
	return true
}

// Logout always succeeds locally; no network call is involved.
func (s *Session) Logout() {
	s.client.Tokens().Clear()
	s.setState(StateUnauthenticated)
}

func (s *Session) setState(state SessionState) SessionState {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return state
}

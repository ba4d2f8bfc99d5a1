package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStartsUnknown(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", Config{})
	s := NewSession(c)
	assert.Equal(t, StateUnknown, s.State())
}

func TestSessionWithoutTokenSkipsNetwork(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, nil)
	s := NewSession(c)

	state := s.Start(context.Background())

	assert.Equal(t, StateUnauthenticated, state)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSessionValidTokenAuthenticates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer good", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true}`))
	}, nil)
	c.Tokens().SetToken("good")
	s := NewSession(c)

	state := s.Start(context.Background())

	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, "good", c.Tokens().Token())
}

func TestSessionRejectedTokenIsCleared(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}, nil)
	c.Tokens().SetToken("stale")
	s := NewSession(c)

	state := s.Start(context.Background())

	assert.Equal(t, StateUnauthenticated, state)
	assert.Empty(t, c.Tokens().Token())
}

func TestSessionNetworkFailureResolvesUnauthenticated(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", Config{})
	c.Tokens().SetToken("unreachable")
	s := NewSession(c)

	state := s.Start(context.Background())

	assert.Equal(t, StateUnauthenticated, state)
	assert.Empty(t, c.Tokens().Token())
}

func TestSessionLoginLifecycle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"issued"}`))
	}, nil)
	s := NewSession(c)

	ok := s.Login(context.Background(), "secret")

	require.True(t, ok)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "issued", c.Tokens().Token())

	s.Logout()
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, c.Tokens().Token())
}

func TestSessionFailedLoginReturnsFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}, nil)
	s := NewSession(c)

	ok := s.Login(context.Background(), "wrong")

	assert.False(t, ok)
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, c.Tokens().Token())
}

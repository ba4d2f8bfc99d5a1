package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardNeverRendersWhileUnknown(t *testing.T) {
	g := NewGuard("")
	decision := g.Decide(StateUnknown)
	assert.Equal(t, GuardLoading, decision.Action)
}

func TestGuardAllowsAuthenticated(t *testing.T) {
	g := NewGuard("")
	decision := g.Decide(StateAuthenticated)
	assert.Equal(t, GuardAllow, decision.Action)
}

func TestGuardRedirectsUnauthenticated(t *testing.T) {
	g := NewGuard("/custom/login")
	decision := g.Decide(StateUnauthenticated)
	assert.Equal(t, GuardRedirect, decision.Action)
	assert.Equal(t, "/custom/login", decision.RedirectTo)
}

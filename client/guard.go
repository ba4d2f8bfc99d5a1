package client

// GuardAction is what a protected route should do for a given session state.
type GuardAction string

const (
	GuardLoading  GuardAction = "loading"
	GuardAllow    GuardAction = "allow"
	GuardRedirect GuardAction = "redirect"
)

// GuardDecision carries the action plus the redirect target when the action
// is GuardRedirect.
type GuardDecision struct {
	Action     GuardAction
	RedirectTo string
}

// Guard decides access to protected routes from the session state. While the
// state is still unknown it asks for a loading placeholder, never the
// protected content.
type Guard struct {
	LoginPath string
}

func NewGuard(loginPath string) *Guard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Guard{LoginPath: loginPath}
}

func (g *Guard) Decide(state SessionState) GuardDecision {
	switch state {
	case StateAuthenticated:
		return GuardDecision{Action: GuardAllow}
	case StateUnknown:
		return GuardDecision{Action: GuardLoading}
	default:
		return GuardDecision{Action: GuardRedirect, RedirectTo: g.LoginPath}
	}
}

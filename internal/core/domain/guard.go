package domain

// Decision is the outcome of evaluating a protected route.
type Decision uint8

const (
	// DecisionWait renders a neutral placeholder while the first
	// verification is still running.
	DecisionWait Decision = iota
	DecisionRender
	DecisionRedirectLogin
	DecisionRedirectDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectDenied:
		return "redirect_denied"
	default:
		return "unknown"
	}
}

// Decide reports what a protected route must do for the given state. An empty
// required set admits any authenticated identity. Loading never redirects.
func Decide(state AuthState, required RoleSet) Decision {
	switch state.Status {
	case StatusLoading:
		return DecisionWait
	case StatusAuthenticated:
		if state.Identity == nil {
			return DecisionRedirectLogin
		}
		if required.Empty() || required.Contains(state.Identity.Role) {
			return DecisionRender
		}
		return DecisionRedirectDenied
	default:
		return DecisionRedirectLogin
	}
}

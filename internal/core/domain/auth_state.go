package domain

// AuthStatus is the tag of AuthState.
type AuthStatus uint8

const (
	StatusLoading AuthStatus = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

func (s AuthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AuthState is derived, never persisted. Identity is non-nil iff Status is
// StatusAuthenticated.
type AuthState struct {
	Status   AuthStatus
	Identity *Identity
}

func LoadingState() AuthState   { return AuthState{Status: StatusLoading} }
func AnonymousState() AuthState { return AuthState{Status: StatusAnonymous} }

func AuthenticatedState(id Identity) AuthState {
	c := id.Clone()
	return AuthState{Status: StatusAuthenticated, Identity: &c}
}

func (s AuthState) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

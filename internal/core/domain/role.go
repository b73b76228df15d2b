package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of principals the dashboard knows about.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleMerchant
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleMerchant: "merchant",
	RoleAdmin:    "admin",
}

// ParseRole converts a role tag into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == tag {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is a set of roles. The zero value is the empty set, which route
// guards read as "any authenticated identity".
type RoleSet uint8

// NewRoleSet builds a set, rejecting roles outside the enumeration.
func NewRoleSet(roles ...Role) (RoleSet, error) {
	var s RoleSet
	for _, r := range roles {
		if !r.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
		}
		s |= 1 << r
	}
	return s, nil
}

// MustRoleSet panics on invalid roles; meant for route tables built at startup.
func MustRoleSet(roles ...Role) RoleSet {
	s, err := NewRoleSet(roles...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s RoleSet) Empty() bool { return s == 0 }

func (s RoleSet) Contains(r Role) bool {
	return r.Valid() && s&(1<<r) != 0
}

// Roles returns the members sorted by name.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(roleNames))
	for r := range roleNames {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (s RoleSet) String() string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}

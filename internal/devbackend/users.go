package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/backoffice/internal/core/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRoleMismatch       = errors.New("account type does not match")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session expired")
	ErrRecordNotFound     = errors.New("record not found")
	ErrInvalidRecord      = errors.New("record must be a JSON object")
	ErrDuplicateEmail     = errors.New("email already registered")
)

// User is an account of the development backend. DigestHash is the bcrypt
// hash of the SHA-256 digest the console sends, never of the plaintext.
type User struct {
	ID         string
	Username   string
	DigestHash string
	Role       domain.Role
	MerchantID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Identity is the user as the console sees it after login.
func (u *User) Identity() domain.Identity {
	id := domain.Identity{Username: u.Username, Role: u.Role, MerchantID: u.MerchantID}
	if u.ID != "" {
		raw, _ := json.Marshal(u.ID)
		id.Extra = map[string]json.RawMessage{"id": raw}
	}
	return id
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// MemoryUserRepository keeps accounts in a map keyed by username.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

var _ UserRepository = (*MemoryUserRepository)(nil)

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, ErrUserExists
	}
	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.Username] = u
	out := u
	return &out, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// SeedUser is one DEV_SEED_USERS entry.
type SeedUser struct {
	Username   string
	Password   string
	Role       domain.Role
	MerchantID string
}

// DefaultSeedUsers is used when DEV_SEED_USERS is empty.
var DefaultSeedUsers = []string{"merchant:merchant123:merchant:1", "admin:admin123:admin"}

// ParseSeedUsers parses username:password:role[:merchantId] entries.
func ParseSeedUsers(entries []string) ([]SeedUser, error) {
	out := make([]SeedUser, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		parts := strings.Split(e, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("seed user %q: want username:password:role[:merchantId]", e)
		}
		role, err := domain.ParseRole(parts[2])
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", e, err)
		}
		if parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("seed user %q: username and password are required", e)
		}
		su := SeedUser{Username: parts[0], Password: parts[1], Role: role}
		if len(parts) == 4 {
			su.MerchantID = parts[3]
		}
		out = append(out, su)
	}
	return out, nil
}

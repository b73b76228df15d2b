// Package devbackend is a development stand-in for the REST backend the
// console talks to. It implements the session endpoints and an in-memory
// store for every catalog resource so the console can be run locally.
package devbackend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/service"
)

const (
	defaultSessionTTL    = time.Hour
	defaultExpiryWarning = 5 * time.Minute
)

// Claims are carried by the session cookie.
type Claims struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	MerchantID string `json:"merchantId,omitempty"`
	jwt.RegisteredClaims
}

// Session is an issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Verification is the outcome of checking a session token.
type Verification struct {
	Claims       *Claims
	ExpiringSoon bool
}

// Config tunes the session service.
type Config struct {
	Secret        string
	SessionTTL    time.Duration
	ExpiryWarning time.Duration
}

// Service implements registration, login and session verification.
type Service struct {
	repo   UserRepository
	secret []byte
	ttl    time.Duration
	warn   time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewService(repo UserRepository, cfg Config) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	warn := cfg.ExpiryWarning
	if warn <= 0 {
		warn = defaultExpiryWarning
	}
	secret := cfg.Secret
	if secret == "" {
		secret = uuid.NewString()
	}
	return &Service{
		repo:    repo,
		secret:  []byte(secret),
		ttl:     ttl,
		warn:    warn,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Register stores a user. The password is digested the same way the console
// does it before bcrypt is applied.
func (s *Service) Register(ctx context.Context, username, password string, role domain.Role, merchantID string) (*User, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}
	return s.RegisterDigest(ctx, username, service.HashPassword(password), role, merchantID)
}

// RegisterDigest stores a user from the SHA-256 digest the console sends.
func (s *Service) RegisterDigest(ctx context.Context, username, digest string, role domain.Role, merchantID string) (*User, error) {
	if username == "" || digest == "" || !role.Valid() {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(digest), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, &User{
		Username:   username,
		DigestHash: string(hash),
		Role:       role,
		MerchantID: merchantID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// Seed registers every entry, skipping accounts that already exist.
func (s *Service) Seed(ctx context.Context, users []SeedUser) error {
	for _, u := range users {
		_, err := s.Register(ctx, u.Username, u.Password, u.Role, u.MerchantID)
		if err != nil && !errors.Is(err, ErrUserExists) {
			return fmt.Errorf("seed %s: %w", u.Username, err)
		}
	}
	return nil
}

// Login checks the digest and the requested account type and issues a session.
func (s *Service) Login(ctx context.Context, username, digest string, role domain.Role) (*User, Session, error) {
	if username == "" || digest == "" {
		return nil, Session{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, Session{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.DigestHash), []byte(digest)) != nil {
		return nil, Session{}, ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, Session{}, ErrRoleMismatch
	}

	sess, err := s.issue(user)
	if err != nil {
		return nil, Session{}, err
	}
	return user, sess, nil
}

func (s *Service) issue(user *User) (Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Username:   user.Username,
		Role:       user.Role.String(),
		MerchantID: user.MerchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ExpiresAt: exp}, nil
}

// Verify validates a session token. Expired tokens return ErrSessionExpired,
// anything else unusable returns ErrInvalidSession.
func (s *Service) Verify(token string) (Verification, error) {
	if token == "" {
		return Verification{}, ErrInvalidSession
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Verification{}, ErrSessionExpired
	}
	if err != nil {
		return Verification{}, ErrInvalidSession
	}
	if s.isRevoked(claims.ID) {
		return Verification{}, ErrInvalidSession
	}

	left := claims.ExpiresAt.Sub(s.now())
	return Verification{Claims: claims, ExpiringSoon: left <= s.warn}, nil
}

// Revoke invalidates a token before its expiry. Unparsable tokens are ignored.
func (s *Service) Revoke(token string) {
	v, err := s.Verify(token)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[v.Claims.ID] = v.Claims.ExpiresAt.Time
}

func (s *Service) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

// Identity rebuilds the console identity from verified claims.
func (c *Claims) Identity() (domain.Identity, error) {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Username: c.Username, Role: role, MerchantID: c.MerchantID}, nil
}

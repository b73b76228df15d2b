package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

const (
	// IdentityKey holds the serialized identity of the signed-in operator.
	IdentityKey = "adminUser"
	// RememberedUserKey holds the username pre-filled on the sign-in screen.
	RememberedUserKey = "adminCredentials"
)

// SessionStore persists the authenticated identity across restarts. The
// backend stays the source of truth for validity; nothing expires locally.
type SessionStore struct {
	kv  ports.KeyValueStore
	log zerolog.Logger
}

func NewSessionStore(kv ports.KeyValueStore, log zerolog.Logger) *SessionStore {
	return &SessionStore{kv: kv, log: log}
}

// Save writes the identity under IdentityKey.
func (s *SessionStore) Save(ctx context.Context, id domain.Identity) error {
	if err := id.Validate(); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	if err := s.kv.Put(ctx, IdentityKey, data); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Load returns the stored identity. A record that does not decode into a
// valid identity is removed and reported as absent.
func (s *SessionStore) Load(ctx context.Context) (*domain.Identity, bool) {
	data, found, err := s.kv.Get(ctx, IdentityKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("session store read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}

	id, err := domain.DecodeIdentity(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding corrupt stored identity")
		s.Clear(ctx)
		return nil, false
	}
	return id, true
}

// Clear removes the stored identity. Failures are logged only.
func (s *SessionStore) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, IdentityKey); err != nil {
		s.log.Warn().Err(err).Msg("session store delete failed")
	}
}

// Preferences keeps the remembered username. It is not a credential and is
// independent from the identity record.
type Preferences struct {
	kv  ports.KeyValueStore
	log zerolog.Logger
}

func NewPreferences(kv ports.KeyValueStore, log zerolog.Logger) *Preferences {
	return &Preferences{kv: kv, log: log}
}

type rememberedUser struct {
	Username string `json:"username"`
}

// RememberedUsername returns the saved username, or "" when none is stored.
// A corrupt entry is removed.
func (p *Preferences) RememberedUsername(ctx context.Context) string {
	data, found, err := p.kv.Get(ctx, RememberedUserKey)
	if err != nil || !found {
		return ""
	}
	var ru rememberedUser
	if err := json.Unmarshal(data, &ru); err != nil || strings.TrimSpace(ru.Username) == "" {
		p.log.Warn().Msg("discarding corrupt remembered username")
		_ = p.kv.Delete(ctx, RememberedUserKey)
		return ""
	}
	return ru.Username
}

// Remember saves username, or forgets it when remember is false.
func (p *Preferences) Remember(ctx context.Context, username string, remember bool) error {
	if !remember {
		return p.kv.Delete(ctx, RememberedUserKey)
	}
	data, err := json.Marshal(rememberedUser{Username: username})
	if err != nil {
		return err
	}
	return p.kv.Put(ctx, RememberedUserKey, data)
}

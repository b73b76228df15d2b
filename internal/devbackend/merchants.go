package devbackend

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/99minutos/backoffice/internal/core/domain"
)

// Merchants creates merchants from an email address alone, the first step of
// a sign-up. A merchant stays pending until an account is attached to it, and
// only pending merchants may be deleted without a session.
type Merchants struct {
	store *ResourceStore
	res   domain.Resource

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewMerchants(store *ResourceStore) *Merchants {
	res, _ := domain.LookupResource("merchants")
	return &Merchants{store: store, res: res, pending: make(map[string]struct{})}
}

// CreateWithEmail stores a merchant holding only email and returns its id.
func (m *Merchants) CreateWithEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidRecord
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.store.List(m.res) {
		if existing, _ := rec["email"].(string); strings.EqualFold(existing, email) {
			return "", ErrDuplicateEmail
		}
	}

	body, _ := json.Marshal(map[string]string{"email": email})
	rec, err := m.store.Create(m.res, body)
	if err != nil {
		return "", err
	}
	id, _ := rec["id"].(string)
	m.pending[id] = struct{}{}
	return id, nil
}

// Exists reports whether a merchant record with id is stored.
func (m *Merchants) Exists(id string) bool {
	_, err := m.store.Get(m.res, id)
	return err == nil
}

// Attach marks the merchant as owned by an account.
func (m *Merchants) Attach(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, id)
}

// DeletePending removes a merchant that never got an account.
func (m *Merchants) DeletePending(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[id]; !ok {
		return fmt.Errorf("pending merchant %s: %w", id, ErrRecordNotFound)
	}
	if err := m.store.Delete(m.res, id); err != nil {
		return err
	}
	delete(m.pending, id)
	return nil
}

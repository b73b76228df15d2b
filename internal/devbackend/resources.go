package devbackend

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/99minutos/backoffice/internal/core/domain"
)

// ResourceStore is an in-memory store for catalog resources. Records are JSON
// objects; the store owns their "id" field.
type ResourceStore struct {
	mu         sync.RWMutex
	records    map[string]map[string]map[string]any
	order      map[string][]string
	singletons map[string]map[string]any
}

func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		records:    make(map[string]map[string]map[string]any),
		order:      make(map[string][]string),
		singletons: make(map[string]map[string]any),
	}
}

// List returns every record of res in insertion order.
func (s *ResourceStore) List(res domain.Resource) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]any, 0, len(s.order[res.Name]))
	for _, id := range s.order[res.Name] {
		out = append(out, clone(s.records[res.Name][id]))
	}
	return out
}

// Get returns one record, or the singleton value when id is empty.
func (s *ResourceStore) Get(res domain.Resource, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if res.Singleton {
		v, ok := s.singletons[res.Name]
		if !ok {
			return map[string]any{}, nil
		}
		return clone(v), nil
	}
	rec, ok := s.records[res.Name][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", res.Name, id, ErrRecordNotFound)
	}
	return clone(rec), nil
}

// Create stores body under a fresh id.
func (s *ResourceStore) Create(res domain.Resource, body json.RawMessage) (map[string]any, error) {
	rec, err := decodeRecord(body)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	rec["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[res.Name] == nil {
		s.records[res.Name] = make(map[string]map[string]any)
	}
	s.records[res.Name][id] = rec
	s.order[res.Name] = append(s.order[res.Name], id)
	return clone(rec), nil
}

// Put stores rec under a caller-chosen id, replacing any previous record.
func (s *ResourceStore) Put(res domain.Resource, id string, rec map[string]any) {
	rec = clone(rec)
	rec["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[res.Name] == nil {
		s.records[res.Name] = make(map[string]map[string]any)
	}
	if _, exists := s.records[res.Name][id]; !exists {
		s.order[res.Name] = append(s.order[res.Name], id)
	}
	s.records[res.Name][id] = rec
}

// Update replaces a record, or the singleton value when res is a singleton.
func (s *ResourceStore) Update(res domain.Resource, id string, body json.RawMessage) (map[string]any, error) {
	rec, err := decodeRecord(body)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Singleton {
		s.singletons[res.Name] = rec
		return clone(rec), nil
	}
	if _, ok := s.records[res.Name][id]; !ok {
		return nil, fmt.Errorf("%s/%s: %w", res.Name, id, ErrRecordNotFound)
	}
	rec["id"] = id
	s.records[res.Name][id] = rec
	return clone(rec), nil
}

func (s *ResourceStore) Delete(res domain.Resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[res.Name][id]; !ok {
		return fmt.Errorf("%s/%s: %w", res.Name, id, ErrRecordNotFound)
	}
	delete(s.records[res.Name], id)
	ids := s.order[res.Name]
	for i, v := range ids {
		if v == id {
			s.order[res.Name] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func decodeRecord(body json.RawMessage) (map[string]any, error) {
	var rec map[string]any
	if err := json.Unmarshal(body, &rec); err != nil || rec == nil {
		return nil, ErrInvalidRecord
	}
	return rec, nil
}

// clone copies the top level; nested values are never mutated in place.
func clone(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

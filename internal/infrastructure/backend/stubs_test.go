package backend

import (
	"sync"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubInvalidator struct {
	mu          sync.Mutex
	gen         uint64
	invalidated []string
	seenGen     []uint64
}

func (s *stubInvalidator) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *stubInvalidator) InvalidateGeneration(gen uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seenGen = append(s.seenGen, gen)
	if gen != s.gen {
		return false
	}
	s.invalidated = append(s.invalidated, reason)
	s.gen++
	return true
}

func (s *stubInvalidator) reasons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.invalidated...)
}

package backend

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/99minutos/backoffice/internal/core/ports"
)

const (
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"

	// peekLimit bounds how much of an error body is inspected for isExpired.
	peekLimit = 64 << 10
)

// InvalidationReason reports whether resp tells us the session is gone: a 401,
// or any error response whose JSON body carries "isExpired": true. The body is
// restored so callers can still read it.
func InvalidationReason(resp *http.Response) (string, bool) {
	if resp == nil {
		return "", false
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ReasonUnauthorized, true
	}
	if resp.StatusCode < http.StatusBadRequest || resp.Body == nil {
		return "", false
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, peekLimit))
	rest := resp.Body
	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(data), rest), rest}
	if err != nil {
		return "", false
	}

	var flag struct {
		IsExpired bool `json:"isExpired"`
	}
	if json.Unmarshal(data, &flag) == nil && flag.IsExpired {
		return ReasonExpired, true
	}
	return "", false
}

// InvalidationTransport decorates a RoundTripper so that every response is
// checked with InvalidationReason. Requests whose path ends with one of the
// skipped suffixes are passed through untouched.
type InvalidationTransport struct {
	next http.RoundTripper
	skip []string

	mu  sync.RWMutex
	inv ports.Invalidator
}

// NewInvalidationTransport wraps next (http.DefaultTransport when nil).
func NewInvalidationTransport(next http.RoundTripper, skipSuffixes ...string) *InvalidationTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &InvalidationTransport{next: next, skip: skipSuffixes}
}

// Bind sets the invalidator notified on authorization failures.
func (t *InvalidationTransport) Bind(inv ports.Invalidator) {
	t.mu.Lock()
	t.inv = inv
	t.mu.Unlock()
}

func (t *InvalidationTransport) invalidator() ports.Invalidator {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inv
}

func (t *InvalidationTransport) skipped(req *http.Request) bool {
	for _, suffix := range t.skip {
		if strings.HasSuffix(req.URL.Path, suffix) {
			return true
		}
	}
	return false
}

func (t *InvalidationTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	inv := t.invalidator()
	if inv == nil || t.skipped(req) {
		return t.next.RoundTrip(req)
	}

	gen := inv.Generation()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if reason, ok := InvalidationReason(resp); ok {
		inv.InvalidateGeneration(gen, reason)
	}
	return resp, nil
}

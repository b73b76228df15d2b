package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/ports"
)

// CookiesKey is the store key of the persisted backend cookies.
const CookiesKey = "sessionCookies"

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PersistentJar is a cookie jar whose cookies for the backend origin survive
// a console restart, the way a browser keeps its cookies across reloads.
type PersistentJar struct {
	jar    *cookiejar.Jar
	origin *url.URL
	kv     ports.KeyValueStore
	log    zerolog.Logger
}

var _ http.CookieJar = (*PersistentJar)(nil)

// NewPersistentJar restores any cookies previously saved for origin.
func NewPersistentJar(ctx context.Context, origin *url.URL, kv ports.KeyValueStore, log zerolog.Logger) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &PersistentJar{jar: jar, origin: origin, kv: kv, log: log}
	j.restore(ctx)
	return j, nil
}

func (j *PersistentJar) restore(ctx context.Context) {
	data, found, err := j.kv.Get(ctx, CookiesKey)
	if err != nil || !found {
		return
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		j.log.Warn().Err(err).Msg("discarding corrupt stored cookies")
		_ = j.kv.Delete(ctx, CookiesKey)
		return
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	j.jar.SetCookies(j.origin, cookies)
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
	if u.Host != j.origin.Host {
		return
	}
	j.persist(context.Background())
}

func (j *PersistentJar) persist(ctx context.Context) {
	current := j.jar.Cookies(j.origin)
	if len(current) == 0 {
		if err := j.kv.Delete(ctx, CookiesKey); err != nil {
			j.log.Warn().Err(err).Msg("stored cookies not removed")
		}
		return
	}
	stored := make([]storedCookie, 0, len(current))
	for _, c := range current {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := j.kv.Put(ctx, CookiesKey, data); err != nil {
		j.log.Warn().Err(err).Msg("cookies not persisted")
	}
}

package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
)

const (
	prefsCookie = "marquee_prefs"
	prefsMaxAge = 365 * 24 * 60 * 60
)

// Prefs are display preferences. They live in a cookie, not in the URL,
// so shared links open the same movie regardless of who views them.
type Prefs struct {
	Category domain.Category
	Columns  int
}

// encode renders prefs as a cookie value
func (p Prefs) encode() string {
	v := url.Values{}
	v.Set("category", string(p.Category))
	v.Set("columns", strconv.Itoa(p.Columns))
	return v.Encode()
}

// apply overlays the values present in v onto p. Unknown categories and
// unparseable column counts are ignored.
func (p Prefs) apply(v url.Values) Prefs {
	if raw := v.Get("category"); raw != "" {
		if c, ok := domain.ParseCategory(raw); ok {
			p.Category = c
		}
	}
	if raw := strings.TrimSpace(v.Get("columns")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.Columns = service.ClampColumns(n)
		}
	}
	return p
}

// readPrefs returns the request's preferences over the server defaults
func (s *Server) readPrefs(r *http.Request) Prefs {
	c, err := r.Cookie(prefsCookie)
	if err != nil {
		return s.defaults
	}
	v, err := url.ParseQuery(c.Value)
	if err != nil {
		return s.defaults
	}
	return s.defaults.apply(v)
}

func writePrefs(w http.ResponseWriter, r *http.Request, p Prefs) {
	http.SetCookie(w, &http.Cookie{
		Name:     prefsCookie,
		Value:    p.encode(),
		Path:     "/",
		MaxAge:   prefsMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeReturn only allows redirects back into this site
func safeReturn(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}

package session

import (
	"net/http"
	"strings"
)

const (
	// TokenCookieName carries a self-contained token. It is the primary
	// transport because it works even where the store is unreachable or
	// not shared across processes.
	TokenCookieName = "__Host-admin-session"

	// IDCookieName carries a bare store identifier.
	IDCookieName = "__Host-admin-sid"

	// tokenQueryParam mirrors TokenCookieName for embedding flows where
	// cookies cannot be set (cross-origin iframes).
	tokenQueryParam = "session_token"

	// idQueryParam mirrors IDCookieName.
	idQueryParam = "sid"
)

// ResolveCandidate extracts the single highest-priority credential from the
// request, without interpreting it. Priority order is fixed: token cookie,
// id cookie, token query parameter, id query parameter, bearer header.
// Classification of the returned string is the Service's job, because the
// same slot can legitimately hold either shape depending on transport.
func ResolveCandidate(r *http.Request) (string, bool) {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	if c, err := r.Cookie(IDCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	query := r.URL.Query()
	if v := query.Get(tokenQueryParam); v != "" {
		return v, true
	}
	if v := query.Get(idQueryParam); v != "" {
		return v, true
	}

	if v := bearerToken(r); v != "" {
		return v, true
	}

	return "", false
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

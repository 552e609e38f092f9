package session

import (
	"net/http"
	"time"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	HttpOnly bool
	SameSite http.SameSite
}

// normalize applies the attributes the __Host- prefix demands. Browsers
// silently drop a __Host- cookie that is not Secure, not Path=/, or
// carries a Domain, so those are not configurable at all.
func (o CookieOptions) normalize() CookieOptions {
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetCookies issues both session cookies: the self-contained token and,
// when the store write succeeded, the bare store identifier. The client
// may drop the secondary cookie without losing the session; the primary
// one is sufficient on its own.
func SetCookies(w http.ResponseWriter, started *Started, opts CookieOptions) {
	opts = opts.normalize()
	maxAge := int(time.Until(started.ExpiresAt).Seconds())

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    started.Token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  started.ExpiresAt,
		HttpOnly: opts.HttpOnly,
		Secure:   true,
		SameSite: opts.SameSite,
	})

	if started.SessionID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     IDCookieName,
			Value:    started.SessionID,
			Path:     "/",
			MaxAge:   maxAge,
			Expires:  started.ExpiresAt,
			HttpOnly: opts.HttpOnly,
			Secure:   true,
			SameSite: opts.SameSite,
		})
	}
}

// ClearCookies removes both session cookies from the client.
func ClearCookies(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()

	for _, name := range []string{TokenCookieName, IDCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: opts.HttpOnly,
			Secure:   true,
			SameSite: opts.SameSite,
		})
	}
}

package auth

import (
	"net/http"
	"time"
)

// CookieName is the session cookie name.
const CookieName = "token"

// CookiePolicy decides the attributes of the session cookie. Production
// serves a cross-site front end over TLS; development runs same-site over
// plain HTTP.
type CookiePolicy struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

// NewCookiePolicy returns the policy for the environment.
func NewCookiePolicy(production bool) CookiePolicy {
	if production {
		return CookiePolicy{Name: CookieName, Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookiePolicy{Name: CookieName, Secure: false, SameSite: http.SameSiteStrictMode}
}

func (p CookiePolicy) base() *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

// Set writes the session cookie.
func (p CookiePolicy) Set(w http.ResponseWriter, token string, expires time.Time) {
	c := p.base()
	c.Value = token
	c.Expires = expires
	if ttl := time.Until(expires); ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}

// Clear expires the session cookie.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	c := p.base()
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// Read returns the session token from the request, if any.
func (p CookiePolicy) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(p.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

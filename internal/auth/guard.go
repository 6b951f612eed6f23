package auth

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/respond"
)

// OwnerParam is the query parameter a caller uses to claim an identity.
const OwnerParam = "email"

// Guard gates requests on the session cookie.
type Guard struct {
	tokens  *TokenManager
	cookies CookiePolicy
	log     zerolog.Logger
}

// NewGuard creates a guard.
func NewGuard(tokens *TokenManager, cookies CookiePolicy, log zerolog.Logger) *Guard {
	return &Guard{tokens: tokens, cookies: cookies, log: log}
}

// Authenticate rejects requests without a valid session with 401 and attaches
// the session to the request context otherwise.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := g.cookies.Read(r)
		if !ok {
			respond.WriteUnauthorized(w, ErrUnauthorized.Error())
			return
		}
		s, err := g.tokens.Verify(token)
		if err != nil {
			g.log.Debug().Err(err).Str("path", r.URL.Path).Msg("session token rejected")
			respond.WriteUnauthorized(w, ErrUnauthorized.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireOwner rejects with 403 unless the session identity equals the
// email query parameter. It must run after Authenticate.
func (g *Guard) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFrom(r.Context())
		if !ok {
			respond.WriteUnauthorized(w, ErrUnauthorized.Error())
			return
		}
		if err := CheckOwner(s, r.URL.Query().Get(OwnerParam)); err != nil {
			respond.WriteForbidden(w, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects with 403 unless the session holds role. It must run
// after Authenticate.
func (g *Guard) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SessionFrom(r.Context())
			if !ok {
				respond.WriteUnauthorized(w, ErrUnauthorized.Error())
				return
			}
			if err := CheckRole(s, role); err != nil {
				respond.WriteForbidden(w, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

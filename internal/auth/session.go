package auth

import "context"

// Roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Session is the identity carried by a verified token. It is never persisted.
type Session struct {
	Email string
	Role  string
}

type sessionKey struct{}

// WithSession returns ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached by Guard.Authenticate.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// CheckOwner requires the session identity to equal the claimed identity.
// An empty claim never matches.
func CheckOwner(s Session, claimed string) error {
	if claimed == "" || s.Email != claimed {
		return ErrForbidden
	}
	return nil
}

// CheckRole requires the session to hold role.
func CheckRole(s Session, role string) error {
	if s.Role != role {
		return ErrForbidden
	}
	return nil
}

// ValidRole reports whether role is one the service issues.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

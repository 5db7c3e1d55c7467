package domain

import "time"

// User is the server-issued identity. Immutable from the client's point of
// view except Avatar, which has a dedicated update call.
type User struct {
	UserID   string
	Email    string
	FullName string
	Avatar   string
}

// CachedSession is the locally persisted copy of the last known identity plus
// the session credential cookie. It is a read-through cache only; the backend
// session remains the source of truth.
type CachedSession struct {
	User       User
	Credential string
	ExpiresAt  time.Time
}

func (s CachedSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// IdentityToken is the result of a third-party provider login, forwarded to
// the backend in exchange for a session.
type IdentityToken struct {
	Token    string
	Email    string
	FullName string
	Avatar   string
}

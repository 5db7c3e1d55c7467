package domain

import "errors"

var (
	ErrEntryNotFound   = errors.New("entry not found")
	ErrNotSignedIn     = errors.New("not signed in")
	ErrSessionNotFound = errors.New("cached session not found")
)

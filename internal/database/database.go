package database

import "errors"

// ErrNotFound is returned when a key has never been stored.
var ErrNotFound = errors.New("not found")

// Store defines the local persistence bidmatch needs: the session record
// and cached UI selections.
type Store interface {
	Ping() error

	GetSession() (*Session, error)
	SaveSession(s *Session) error
	ClearSession() error

	// Selections are small JSON values remembered between runs, such as the
	// last category picked in the project form.
	GetSelection(key string, out any) error
	SaveSelection(key string, v any) error
	DeleteSelection(key string) error

	Close() error
}

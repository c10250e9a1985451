// Package sentinel names storage facts that services translate into domain
// errors. Stores return them, optionally wrapped.
package sentinel

import "errors"

var (
	// ErrNotFound: no session in the slot, or no alert record with the ID.
	ErrNotFound = errors.New("not found")
	// ErrConflict: an alert record with the same ID was already saved.
	ErrConflict = errors.New("conflict")
)

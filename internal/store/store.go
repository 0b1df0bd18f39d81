// Package store implements persistence for users, the item catalog, clients
// and order reads. Order lifecycle writes (create, status override, batch
// shipment) live in the engine package.
package store

import "strings"

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
// The modernc driver exposes constraint failures only through the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

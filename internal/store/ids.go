package store

import "github.com/google/uuid"

// NewID returns a fresh prefixed id, e.g. "item-9f2c41ab".
// The prefix keeps ids readable in CLI output and logs.
func NewID(kind string) string {
	return kind + "-" + uuid.NewString()[:8]
}

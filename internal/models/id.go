// internal/models/id.go
package models

import "github.com/google/uuid"

// NewID returns a collision-resistant record identifier. Uniqueness is a
// correctness invariant here, so ids are random 128-bit UUIDs rather than
// short random strings.
func NewID() string {
	return uuid.NewString()
}

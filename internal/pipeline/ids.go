package pipeline

import "github.com/google/uuid"

// newJobID returns a version 7 UUID. Its leading 48 bits are a millisecond
// timestamp and the library keeps IDs from one process increasing, so job
// IDs sort by creation time.
func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

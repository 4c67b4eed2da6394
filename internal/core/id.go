package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces a record id for an expense created at now.
type IDGenerator func(now time.Time) string

const (
	IDSchemeTimestamp = "timestamp"
	IDSchemeUUID      = "uuid"
)

// TimestampID derives the id from the creation time with one-second
// resolution (YYYYMMDDHHMMSS). Two records created in the same second
// share an id.
func TimestampID(now time.Time) string {
	return now.Format("20060102150405")
}

// UUIDID returns a random v4 UUID, ignoring now.
func UUIDID(time.Time) string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator for a configured scheme name.
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case "", IDSchemeTimestamp:
		return TimestampID, nil
	case IDSchemeUUID:
		return UUIDID, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}

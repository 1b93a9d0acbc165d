package contracts

import (
	"errors"
	"fmt"
)

// ErrInvalidRubric marks an empty or structurally malformed rubric.
// Fatal: the whole call aborts, no computation proceeds.
var ErrInvalidRubric = errors.New("invalid rubric")

// MalformedRecordError reports a single raw record that cannot be
// normalized. Non-fatal to a batch: the record is excluded and reported in
// the rejection list, never silently dropped.
type MalformedRecordError struct {
	Field  string // canonical field that failed (store_id, submitted_at)
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: %s: %s", e.Field, e.Reason)
}

// IsMalformedRecord reports whether err is a per-record normalization
// failure (as opposed to a batch-fatal error).
func IsMalformedRecord(err error) bool {
	var mre *MalformedRecordError
	return errors.As(err, &mre)
}

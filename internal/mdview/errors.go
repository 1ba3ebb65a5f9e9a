package mdview

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned by FeedRecord when no record is given
	// and the index does not address the record set.
	ErrIndexOutOfRange = errors.New("record index out of range")
	// ErrNoRecord is returned by OpenView without a record.
	ErrNoRecord = errors.New("no record to open")
	// ErrNoHistory is returned by Back when fewer than two records were
	// viewed.
	ErrNoHistory = errors.New("no previous record")
)

// LookupMissError reports a uuid lookup that did not resolve to exactly one
// record.
type LookupMissError struct {
	UUID  string
	Count int
}

func (e *LookupMissError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("record %s not found", e.UUID)
	}
	return fmt.Sprintf("record %s is ambiguous: %d matches", e.UUID, e.Count)
}

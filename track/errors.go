package track

import "errors"

var (
	// ErrNoRecord indicates no duration record was stashed for an executable.
	ErrNoRecord = errors.New("track: no record for executable")
)

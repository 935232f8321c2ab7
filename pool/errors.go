package pool

import "errors"

var (
	// ErrClosed indicates a submission was made to a closed pool.
	ErrClosed = errors.New("pool: closed")

	// ErrRejected indicates a task was rejected because the pending queue
	// is full and empty of evictable work.
	ErrRejected = errors.New("pool: task rejected")
)

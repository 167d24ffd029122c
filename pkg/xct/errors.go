package xct

import "errors"

// Sentinel errors surfaced to callers. All are transient or
// resource-exhaustion failures: the caller's only recourse is to retry
// the transaction from scratch.
var (
	ErrReadSetOverflow      = errors.New("xct: read set overflow")
	ErrWriteSetOverflow     = errors.New("xct: write set overflow")
	ErrRaceAbort            = errors.New("xct: race abort")
	ErrLargeReadSetAbort    = errors.New("xct: large read set abort")
	ErrUserRequestedAbort   = errors.New("xct: user requested abort")
	ErrStorageAlreadyExists = errors.New("xct: storage already exists")
)

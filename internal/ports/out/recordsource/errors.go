package recordsource

import "errors"

var (
	// ErrUnavailable means the backing store could not be reached or is not provisioned.
	ErrUnavailable = errors.New("record source unavailable")
	// ErrMalformed means the source answered but the payload could not be decoded.
	ErrMalformed = errors.New("record source payload malformed")
)

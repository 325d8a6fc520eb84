package domain

import (
	"errors"
	"fmt"
)

// ErrBadIdentifier the vendor reports the instrument does not exist; polling it again is pointless.
var ErrBadIdentifier = errors.New("bad instrument identifier")

// ErrFetchFailed a transient fetch failure (network, timeout, non-success status).
var ErrFetchFailed = errors.New("price fetch failed")

// ErrInstrumentNotFound no instrument matches the requested key.
var ErrInstrumentNotFound = errors.New("no matching instrument")

// ErrInvalidCommand a transaction command carries an unusable amount or price.
var ErrInvalidCommand = errors.New("invalid transaction command")

// ParseError reports a malformed field of the portfolio document.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("portfolio config: %s: %s", e.Path, e.Reason)
}

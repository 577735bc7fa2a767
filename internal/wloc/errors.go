package wloc

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyRequest     = errors.New("wloc: no access points in request")
	ErrEnvelopeTooLarge = errors.New("wloc: inner message exceeds one-byte length prefix")
	ErrShortResponse    = errors.New("wloc: response shorter than fixed prefix")
)

// UpstreamError reports a non-success HTTP exchange with the positioning
// service. It is the "upstream unavailable" condition: distinguishable from
// both input validation failures and undecodable response bodies.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("wloc: upstream returned %s", e.Status)
}

package nadavr

import "errors"

// Standard errors. Callers branch on these with errors.Is; failures of the
// connection itself never escape the background loops as anything other
// than a state transition plus a connectivity notification.
var (
	ErrNotConnected     = errors.New("nadavr: not connected")
	ErrAlreadyConnected = errors.New("nadavr: already connected")
	ErrConnectionLost   = errors.New("nadavr: connection lost")
	ErrQueryTimeout     = errors.New("nadavr: query timed out")
	ErrQuerySuperseded  = errors.New("nadavr: query superseded by a newer query")
)

package engine

import (
	"errors"
	"fmt"
)

// ErrTerminalSession is returned when a turn is requested after the session
// has ended. No oracle call is made and state is untouched.
var ErrTerminalSession = errors.New("session has ended")

// ErrSessionNotFound is returned when the session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrGraphNotFound is returned when the named puzzle graph does not exist.
var ErrGraphNotFound = errors.New("puzzle graph not found")

// OracleError reports that the oracle call failed or timed out. The turn
// was not applied; the utterance is safe to resend.
type OracleError struct {
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle unavailable: %v", e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// PersistenceError reports that the turn was computed but the durable write
// failed. The turn is not committed; the caller may retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist session: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

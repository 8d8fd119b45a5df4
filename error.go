package cansim

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrClosed           = errors.New("session closed")
	ErrNoDevice         = errors.New("no device selected")
)

// TimeoutError is returned by SendCommand when no response shows up
// within the deadline. The command itself may still execute on the
// firmware; expiry is purely local.
type TimeoutError struct {
	Command string
	Timeout int64 // milliseconds
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout (%dms) waiting for response to %q", e.Timeout, e.Command)
}

// CommandError is returned by the high level command helpers when the
// firmware answers with a status other than "ok".
type CommandError struct {
	Command string
	Status  string
	Message string
}

func (e *CommandError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("command %q failed: %s (%s)", e.Command, e.Status, e.Message)
	}
	return fmt.Sprintf("command %q failed: %s", e.Command, e.Status)
}

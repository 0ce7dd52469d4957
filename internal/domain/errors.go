package domain

import (
	"errors"
	"fmt"
)

// RemoteError describes a failed call to the graph query backend.
type RemoteError struct {
	Op         string
	StatusCode int
	// Detail is the message supplied by the server, when any.
	Detail string
	Err    error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	default:
		return e.Op + ": request failed"
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Describe renders an error as a user-facing status line using the most
// specific message available: server detail, then the error text.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		if remote.Detail != "" {
			return remote.Detail
		}
		if remote.Err != nil {
			return remote.Err.Error()
		}
	}
	return err.Error()
}

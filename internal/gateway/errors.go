package gateway

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the server answers with code 401.
// The session has already been invalidated by the time callers see it;
// the same request must not be retried without re-authentication.
var ErrSessionExpired = errors.New("session expired, please sign in again")

// NetworkError is a transport-level failure: connection trouble or a
// non-200 HTTP status. It is transient and never retried automatically.
type NetworkError struct {
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("network error: status %d", e.Status)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BusinessError carries a server-supplied failure for a well-formed request.
// Its message is shown to the user verbatim.
type BusinessError struct {
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with code %d", e.Code)
	}
	return e.Message
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsBusiness reports whether err is a server-side business rejection.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

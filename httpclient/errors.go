package httpclient

import (
	"errors"
	"fmt"
)

var ErrConnection = errors.New("connection failed")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d: %s", e.StatusCode, e.Body)
}

func IsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

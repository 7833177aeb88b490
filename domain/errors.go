package domain

import (
	"errors"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConfiguration      = errors.New("configuration error")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// InvalidArgumentError reports caller-supplied data the backend would reject.
// Field is the label of the offending field, e.g. "AndroidConfig.ttl".
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func NewInvalidArgument(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

func (e *InvalidArgumentError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsUnexpectedResponse(err error) bool {
	return errors.Is(err, ErrUnexpectedResponse)
}

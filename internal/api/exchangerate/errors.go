package exchangerate

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField    = errors.New("field missing")
	ErrNonPositiveRate = errors.New("rate is not positive")
)

// FetchError means the endpoint could not be reached or answered non-200.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the endpoint answered but the body is not a usable rate.
type ParseError struct {
	Endpoint string
	Field    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s: %s: %v", e.Endpoint, e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

package forecast

import (
	"errors"
	"fmt"

	"github.com/Alias1177/GoldPredictor/internal/api/exchangerate"
)

// Kind classifies a pipeline failure
type Kind string

const (
	KindInput Kind = "input" // form value is not a finite number
	KindModel Kind = "model" // model could not produce a price
	KindFetch Kind = "fetch" // rate endpoint unreachable or non-200
	KindParse Kind = "parse" // rate endpoint answered with an unusable body
)

// ErrJournalDisabled is returned by History when no journal is configured.
var ErrJournalDisabled = errors.New("prediction journal is not configured")

// Error is a failure surfaced to the presentation layer.
type Error struct {
	Kind  Kind
	Field string // input errors only
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a forecast error, or "" if err is not one.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// RateErrorKind classifies why a rate quote fell back. It is "" for a quote
// taken straight from the primary endpoint.
func RateErrorKind(cause error) Kind {
	if cause == nil {
		return ""
	}
	var pe *exchangerate.ParseError
	if errors.As(cause, &pe) {
		return KindParse
	}
	return KindFetch
}

// UserMessage is the inline text shown after "Error while predicting: ".
func UserMessage(err error) string {
	var fe *Error
	if !errors.As(err, &fe) {
		return err.Error()
	}
	if fe.Field != "" {
		return fe.Field + " " + fe.Err.Error()
	}
	return fe.Err.Error()
}

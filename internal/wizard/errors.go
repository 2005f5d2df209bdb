package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrFinished           = errors.New("wizard: request already submitted or cancelled")
	ErrSubmitInFlight     = errors.New("wizard: submission already in progress")
	ErrNotFinalStep       = errors.New("wizard: submit is only allowed from the final step")
	ErrLastStep           = errors.New("wizard: already on the final step")
	ErrUnknownField       = errors.New("wizard: unknown field")
	ErrInvalidValue       = errors.New("wizard: invalid value")
	ErrUnknownReason      = errors.New("wizard: unknown main reason")
	ErrUnknownSubReason   = errors.New("wizard: sub reason does not belong to the main reason")
	ErrRequestTypeLocked  = errors.New("wizard: request type can only change on the first step")
	ErrValidationInFlight = errors.New("wizard: item validation already in progress")
	ErrNothingToValidate  = errors.New("wizard: no serial or item number to validate")
	ErrNoValidator        = errors.New("wizard: item validation is not available")
	ErrEmptyResponse      = errors.New("wizard: the API returned no result")
)

// ValidationError is returned when a step predicate does not hold.
type ValidationError struct {
	Step    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wizard: step %s: %s", e.Step, e.Message)
}

// userMessager is implemented by API errors that carry text meant for the
// person filling in the form.
type userMessager interface {
	UserMessage() string
}

// userMessage converts err into the single line shown to the user.
func userMessage(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

package omssync

import (
	"errors"
	"fmt"
)

// ValidationError marks caller-supplied data the reconciler refuses to
// persist: malformed dates, non-numeric quantities/costs, missing fields.
// Handlers map it to a client error; every other failure is a store error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

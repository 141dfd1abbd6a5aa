package settlement

import "fmt"

// InvalidInputError reports a referential or shape problem in settlement
// input: a rate that does not belong to the client, a payment override for
// an unassigned worker, a malformed cycle key. Billing correctness cannot
// be guessed, so these are raised immediately instead of being defaulted.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid settlement input: %s: %s", e.Field, e.Reason)
}

func invalidInput(field, format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

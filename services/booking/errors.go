package booking

import (
	"fmt"

	"concierge/models"
)

// ValidationError reports a slot value the guest has to re-enter.
type ValidationError struct {
	Slot    models.BookingStep
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newValidationError(slot models.BookingStep, code, msg string) *ValidationError {
	return &ValidationError{Slot: slot, Code: code, Message: msg}
}

const (
	CodeBadDateFormat = "badDateFormat"
	CodeBadCalendar   = "badCalendarDate"
	CodeDateOrder     = "dateOrder"
	CodeOutOfRange    = "outOfRange"
	CodeNotANumber    = "notANumber"
)

// FormatError is returned by BuildURL for dates it cannot reformat.
type FormatError struct {
	Value   string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatError: %s (%q)", e.Message, e.Value)
}

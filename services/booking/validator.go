package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"concierge/models"
)

const isoDate = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate accepts the YYYY-MM-DD shape only. Calendar validity is not checked.
func ValidateDate(s string) (string, error) {
	if !datePattern.MatchString(s) {
		return "", newValidationError("", CodeBadDateFormat, "date must look like YYYY-MM-DD")
	}
	return s, nil
}

// ValidateCalendarDate is ValidateDate plus a real calendar check.
func ValidateCalendarDate(s string) (time.Time, error) {
	if _, err := ValidateDate(s); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return time.Time{}, newValidationError("", CodeBadCalendar, "date does not exist in the calendar")
	}
	return t, nil
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateCount accepts a plain digit string whose value lies in [min, max].
func ValidateCount(s string, min, max int) (int, error) {
	if !isASCIIDigits(s) {
		return 0, newValidationError("", CodeNotANumber, "value must be a whole number")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, newValidationError("", CodeOutOfRange, "value out of range")
	}
	return n, nil
}

// ValidateChildAges parses a comma separated age list. Tokens that are not
// plain digits are dropped. A lone "0" means no children.
func ValidateChildAges(s string) []int {
	ages := []int{}
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if !isASCIIDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		ages = append(ages, n)
	}
	if len(ages) == 1 && ages[0] == 0 {
		return []int{}
	}
	return ages
}

// validateSlotDate applies the date rule for step, strict or lenient.
func validateSlotDate(step models.BookingStep, s string, strict bool) (string, *time.Time, error) {
	if !strict {
		d, err := ValidateDate(s)
		if err != nil {
			return "", nil, withSlot(err, step)
		}
		return d, nil, nil
	}
	t, err := ValidateCalendarDate(s)
	if err != nil {
		return "", nil, withSlot(err, step)
	}
	return s, &t, nil
}

func withSlot(err error, step models.BookingStep) error {
	if ve, ok := err.(*ValidationError); ok {
		ve.Slot = step
	}
	return err
}

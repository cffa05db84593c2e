package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return InputErrorf("phone number is not valid: %v", err)
	}
	if !libphonenumber.IsValidNumber(p) {
		return InputErrorf("phone number is not valid")
	}
	return nil
}

// ValidateContact accepts an empty value, an email address or a phone number.
func ValidateContact(contact, countryCode string) error {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil
	}
	if strings.Contains(contact, "@") {
		if !IsValidEmail(contact) {
			return InputErrorf("email is not valid")
		}
		return nil
	}
	return ValidatePhoneNumber(contact, countryCode)
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["error"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

/* calendar dates */

// ToDate drops the clock part, keeping the calendar day of t in its own location,
// and returns it as midnight UTC.
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays is calendar-day arithmetic on a date.
func AddDays(date time.Time, days int) time.Time {
	return ToDate(date).AddDate(0, 0, days)
}

// DateOrToday returns the calendar day of date, or today when date is nil.
func DateOrToday(date *time.Time, today time.Time) time.Time {
	if date == nil || date.IsZero() {
		return ToDate(today)
	}
	return ToDate(*date)
}

func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, InputErrorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return &d, nil
}

func FormatDate(date *time.Time) string {
	if date == nil || date.IsZero() {
		return ""
	}
	return date.Format(DateLayout)
}

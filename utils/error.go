package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvalidInput matches every error raised by input validation.
var ErrorInvalidInput = errors.New("invalid input")

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrorInvalidInput }

// InputErrorf formats a validation error. The message is kept as written and
// errors.Is(err, ErrorInvalidInput) reports true.
func InputErrorf(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

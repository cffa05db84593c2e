package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidDirection  = errors.New("invalid contract direction")
	ErrInvalidStatus     = errors.New("invalid venture status")
)

// TransitionError names the current status, the requested one and what the
// current status may move to.
type TransitionError struct {
	From    VentureStatus
	To      VentureStatus
	Allowed []VentureStatus
}

func (e *TransitionError) Error() string {
	allowed := "none, terminal state"
	if len(e.Allowed) > 0 {
		parts := make([]string, len(e.Allowed))
		for i, s := range e.Allowed {
			parts[i] = string(s)
		}
		allowed = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%s: %s -> %s (allowed from %s: %s)", ErrInvalidTransition, e.From, e.To, e.From, allowed)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

type DirectionError struct {
	Value string
}

func (e *DirectionError) Error() string {
	parts := make([]string, len(LegalContractDirections))
	for i, d := range LegalContractDirections {
		parts[i] = string(d)
	}
	return fmt.Sprintf("%s %q: must be one of %s", ErrInvalidDirection, e.Value, strings.Join(parts, ", "))
}

func (e *DirectionError) Unwrap() error { return ErrInvalidDirection }

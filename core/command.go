package core

import (
	"errors"
	"fmt"
)

// ErrInvalidCommand is wrapped by every ValidationError produced for a command
// whose axis values fall outside {-1, 0, 1}.
var ErrInvalidCommand = errors.New("invalid acceleration command")

// Command is a requested one-tick acceleration delta. Each axis must be one of
// -1, 0 or 1 for the command to be applied.
type Command struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// NewCommand is shorthand for Command{DX: dx, DY: dy}.
func NewCommand(dx, dy int) Command { return Command{DX: dx, DY: dy} }

// Delta returns the command as a vector.
func (c Command) Delta() Vec { return Vec{X: c.DX, Y: c.DY} }

// Validate checks both axes. The whole command is invalid if either axis is;
// the first offending axis is reported.
func (c Command) Validate() error {
	if !validAxis(c.DX) {
		return &ValidationError{Field: "dx", Value: c.DX, Message: "must be one of -1, 0, 1"}
	}
	if !validAxis(c.DY) {
		return &ValidationError{Field: "dy", Value: c.DY, Message: "must be one of -1, 0, 1"}
	}
	return nil
}

// String renders the command as "(dx, dy)".
func (c Command) String() string { return c.Delta().String() }

func validAxis(n int) bool { return n >= -1 && n <= 1 }

// ValidationError describes a rejected command axis.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value %v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidCommand.
func (e *ValidationError) Unwrap() error { return ErrInvalidCommand }

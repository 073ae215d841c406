package tools

import (
	"errors"
	"fmt"
)

type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ArgumentValidationError names the offending field so the planner can fix
// its next call.
type ArgumentValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ArgumentValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("invalid arguments for %s: field %q %s", e.Tool, e.Field, e.Reason)
}

// IsValidationError reports whether err is a registry-level rejection that
// retrying cannot fix.
func IsValidationError(err error) bool {
	var unknown *UnknownToolError
	var invalid *ArgumentValidationError
	return errors.As(err, &unknown) || errors.As(err, &invalid)
}

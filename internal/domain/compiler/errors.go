package compiler

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
)

var (
	ErrStructural = errors.New("structural error")
	ErrOutput     = errors.New("output error")
)

// Diagnostic records a problem recovered during compilation.
type Diagnostic = blueprint.Diagnostic

// StructuralError aborts a compile. Subject locates the offending actor or
// action ("actors[1]", "actions[3]").
type StructuralError struct {
	Subject string
	Reason  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Subject, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrStructural).
func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

func structural(subject, format string, args ...any) error {
	return &StructuralError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// OutputError reports a document that could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write scenario to %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() []error {
	return []error{ErrOutput, e.Err}
}

package physics

import (
	"errors"
	"fmt"
)

// Template errors.
var (
	// ErrUnknownParticle indicates a link endpoint that names no node.
	ErrUnknownParticle = errors.New("physics: link references unknown particle")

	// ErrDuplicateParticle indicates two nodes sharing a name.
	ErrDuplicateParticle = errors.New("physics: duplicate particle name")

	// ErrEmptyName indicates a node declared without a name.
	ErrEmptyName = errors.New("physics: particle name is empty")

	// ErrInvalidMass indicates a negative or non-finite mass.
	ErrInvalidMass = errors.New("physics: particle mass must be positive")
)

// TemplateError wraps a template error with the offending link or node.
type TemplateError struct {
	Link    int // -1 when the error is about a node
	Name    string
	Wrapped error
}

func (e *TemplateError) Error() string {
	if e.Link >= 0 {
		return fmt.Sprintf("link %d (%q): %v", e.Link, e.Name, e.Wrapped)
	}
	return fmt.Sprintf("node %q: %v", e.Name, e.Wrapped)
}

func (e *TemplateError) Unwrap() error {
	return e.Wrapped
}

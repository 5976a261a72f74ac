package hier

import (
	"fmt"

	"mustuse/internal/source"
)

// StructuralOverrideMismatchError reports an override edge whose signatures
// are inconsistent with the override rules. It is a fatal configuration
// error: the front end handed the engine a malformed graph, so the whole run
// aborts instead of producing partial diagnostics.
type StructuralOverrideMismatchError struct {
	Derived     string // qualified name of the overriding declaration
	Base        string // qualified name of the overridden declaration
	Reason      string
	DerivedSpan source.Span
	BaseSpan    source.Span
}

func (e *StructuralOverrideMismatchError) Error() string {
	return fmt.Sprintf("structural override mismatch: %s cannot override %s: %s",
		e.Derived, e.Base, e.Reason)
}

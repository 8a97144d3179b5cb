package subscript

import "fmt"

// StructuralError reports a fatal problem discovered while resolving the
// subscript table: a cycle among dimension declarations, a duplicate
// dimension name, or a family name that does not resolve to any declared
// dimension.
type StructuralError struct {
	Name   string // canonical name involved
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("subscript table: %s: %s", e.Name, e.Reason)
}

// MappingError is a non-fatal diagnostic recorded when a mapping inverts to
// a target position outside the target dimension's range. Resolution
// continues with the inverted mapping left sparse at that position.
type MappingError struct {
	FromDim, ToDim, Token string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("subscript table: mapping %s -> %s: unresolved position for %q", e.FromDim, e.ToDim, e.Token)
}

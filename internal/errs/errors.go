// Package errs defines the six error kinds the analyzer pipeline can raise
// (§7), shared across internal packages so each stage can construct the
// kind appropriate to its own failures without importing the top-level
// analyzer package (which would create an import cycle, since analyzer
// wires all of these stages together).
package errs

import "fmt"

// StructuralError reports a cycle in dimension expansion, a duplicate
// dimension, or an unknown family.
type StructuralError struct {
	Name   string // canonical name involved
	Source string // source-level (vensim) spelling, via decanonicalize
	Stage  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: structural error on %q (%s): %s", e.Stage, e.Source, e.Name, e.Reason)
}

// UnknownReference reports a refId in references/initReferences that
// resolves to no variable.
type UnknownReference struct {
	Name   string
	Source string
	Stage  string
	RefID  string
}

func (e *UnknownReference) Error() string {
	return fmt.Sprintf("%s: %q (%s) references unknown refId %q", e.Stage, e.Source, e.Name, e.RefID)
}

// SpecMismatch reports a spec-declared input/output with no backing
// variable and no external data to synthesize one from.
type SpecMismatch struct {
	Field  string // "inputVars" or "outputVars"
	Name   string
	Source string
	Stage  string
}

func (e *SpecMismatch) Error() string {
	return fmt.Sprintf("%s: spec field %q names %q (%s) but no variable or external data backs it", e.Stage, e.Field, e.Source, e.Name)
}

// TypeConflict reports a variable declared with incompatible types that
// duplicate-declaration resolution (§4.8) could not reconcile.
type TypeConflict struct {
	Name   string
	Source string
	Stage  string
	Reason string
}

func (e *TypeConflict) Error() string {
	return fmt.Sprintf("%s: type conflict on %q (%s): %s", e.Stage, e.Source, e.Name, e.Reason)
}

// ParseError is propagated from the synthesized-equation path when adding
// an equation is given malformed text.
type ParseError struct {
	Name   string
	Source string
	Stage  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse synthesized equation for %q (%s): %v", e.Stage, e.Source, e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Cycle reports a dependency cycle found by the topological sorter, at
// either the init or the aux/level phase.
type Cycle struct {
	Name   string // one node in the cycle
	Source string
	Stage  string
	Phase  string // "init" or "aux/level"
}

func (e *Cycle) Error() string {
	return fmt.Sprintf("%s: dependency cycle in %s phase at %q (%s)", e.Stage, e.Phase, e.Source, e.Name)
}

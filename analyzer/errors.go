package analyzer

import "github.com/sdflow/modelanalyzer/internal/errs"

// The six error kinds (§7) are defined once in internal/errs and
// re-exported here as the public API surface callers (including CLIError
// at the CLI boundary) match against with errors.As. Dimension resolution
// is the exception: it returns internal/subscript's own StructuralError,
// which does not match the StructuralError alias below.
type (
	StructuralError  = errs.StructuralError
	UnknownReference = errs.UnknownReference
	SpecMismatch     = errs.SpecMismatch
	TypeConflict     = errs.TypeConflict
	ParseError       = errs.ParseError
	Cycle            = errs.Cycle
)

// Package vartable implements the variable table: storage of Variable
// records keyed by canonical name, with support for multi-valued lookup
// (non-apply-to-all variants), mirroring the corpus's Document/Store
// separation in types.Config / types.DimensionSet but for model variables.
package vartable

import "github.com/sdflow/modelanalyzer/internal/parsetree"

// VarType classifies how a variable is evaluated.
type VarType int

const (
	// TypeUnset means the Equation Reader has not yet classified this
	// variable (only true transiently, between reading and classification).
	TypeUnset VarType = iota
	TypeConst
	TypeLookup
	TypeData
	TypeAux
	TypeLevel
)

// String renders the variable type the way diagnostics and the JSON
// listing expect it.
func (t VarType) String() string {
	switch t {
	case TypeConst:
		return "const"
	case TypeLookup:
		return "lookup"
	case TypeData:
		return "data"
	case TypeAux:
		return "aux"
	case TypeLevel:
		return "level"
	default:
		return "unset"
	}
}

// Point is a single (x, y) pair of a lookup or data table.
type Point struct {
	X, Y float64
}

// Variable is one fully- or partially-analyzed model variable. Fields are
// filled in progressively across the pipeline: the Variable Reader sets
// varName/modelLHS/modelFormula/subscripts; the Reference Resolver sets
// refId and separationDims; the Equation Reader sets varType,
// hasInitValue, references, initReferences and the referenced-name sets.
type Variable struct {
	VarName      string
	ModelLHS     string
	ModelFormula string

	Subscripts     []string // canonical, normal order
	SeparationDims []string // canonical dimension names this variable was split on

	VarType      VarType
	HasInitValue bool
	Points       []Point

	References     []string // refIds
	InitReferences []string // refIds

	ReferencedLookupVarNames []string
	ReferencedFunctionNames  []string

	RefID string

	// RHS holds the raw right-hand-side expression tree for FormulaExpr
	// equations, carried forward from the Variable Reader so the Equation
	// Reader can walk it once refIds have been assigned to every variant.
	// Nil for lookup-table and placeholder variables.
	RHS *parsetree.Expr
}

// IsApplyToAll reports whether v currently looks like a scalar or an
// apply-to-all array: it has no separation dimensions recorded. This is
// only meaningful after non-apply-to-all detection has run (§4.5); before
// that, every freshly-read variable is apply-to-all by default.
func (v *Variable) IsApplyToAll() bool {
	return len(v.SeparationDims) == 0
}

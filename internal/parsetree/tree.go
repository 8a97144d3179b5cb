// Package parsetree defines the shape of a parsed system-dynamics model as
// handed to the analyzer by the external lexer/parser collaborator (out of
// scope for this repository, §1). It models both the shapes that
// collaborator may present: a legacy single-root-with-visitor tree, and a
// modern tree with separate dimension/equation lists.
package parsetree

// Shape tags which concrete form a Tree carries.
type Shape int

const (
	// Modern trees carry Dimensions and Equations as separate, already
	// split lists.
	Modern Shape = iota
	// Legacy trees carry a single ordered list of nodes, each either a
	// dimension or an equation declaration, in source order.
	Legacy
)

// Tree is the tagged parse-tree root. The analyzer dispatches on Shape
// rather than using inheritance-based visitor dispatch (§9 design notes).
type Tree struct {
	Shape Shape

	// Modern shape.
	Dimensions []DimensionDef
	Equations  []EquationDef

	// Legacy shape: a single mixed-order node list.
	Nodes []Node
}

// Node is a legacy-shape tree entry: exactly one of Dimension or Equation
// is set. Visit dispatches on which field is populated (pattern matching
// over the variant, not a virtual method).
type Node struct {
	Dimension *DimensionDef
	Equation  *EquationDef
}

// Visit walks a Tree regardless of shape, calling onDimension for each
// dimension declaration and onEquation for each equation declaration, in
// source order.
func Visit(t *Tree, onDimension func(DimensionDef), onEquation func(EquationDef)) {
	switch t.Shape {
	case Modern:
		for _, d := range t.Dimensions {
			onDimension(d)
		}
		for _, e := range t.Equations {
			onEquation(e)
		}
	case Legacy:
		for _, n := range t.Nodes {
			switch {
			case n.Dimension != nil:
				onDimension(*n.Dimension)
			case n.Equation != nil:
				onEquation(*n.Equation)
			}
		}
	}
}

// DimensionDef is a raw subscript-range declaration as parsed from source,
// before any resolution. ModelValue tokens may themselves name other
// dimensions; Mappings holds unresolved per-target-dimension token lists.
type DimensionDef struct {
	Name       string // source-level name
	IsAlias    bool
	FamilyName string              // source-level family name, set when IsAlias
	ModelValue []string            // source-level tokens, empty when IsAlias
	Mappings   map[string][]string // target dimension source name -> raw tokens
}

// EquationDef is a single parsed equation: one LHS name with zero or more
// subscript expressions, and a classified RHS formula.
type EquationDef struct {
	LHSName        string
	LHSSubscripts  []string // source-level subscript tokens, in LHS order
	ModelLHS       string   // original LHS text, retained for diagnostics
	ModelFormula   string   // original RHS text, retained for diagnostics
	Formula        Formula
}

// FormulaKind classifies the shape of an equation's right-hand side well
// enough for the Equation Reader to classify the owning variable without
// needing a full expression grammar (out of scope, §1).
type FormulaKind int

const (
	// FormulaExpr is a general expression, walked via its Expr tree.
	FormulaExpr FormulaKind = iota
	// FormulaLookupTable is a standalone inline lookup definition,
	// ( (x1,y1), (x2,y2), ... ), with no enclosing function call.
	FormulaLookupTable
)

// Formula is an equation's right-hand side.
type Formula struct {
	Kind   FormulaKind
	Expr   *Expr        // set when Kind == FormulaExpr
	Points [][2]float64 // set when Kind == FormulaLookupTable
}

// ExprKind tags the variant of Expr.
type ExprKind int

const (
	ExprNumber ExprKind = iota
	ExprVarRef
	ExprCall
	ExprBinary
	ExprUnary
	ExprLookupTable
)

// Expr is a minimal right-hand-side expression tree: just enough structure
// for the Equation Reader to classify variable roles and walk references
// (§4.6), without reproducing a full expression grammar (non-goal, §1).
type Expr struct {
	Kind ExprKind

	Number float64 // ExprNumber

	VarName       string   // ExprVarRef: source-level name
	VarSubscripts []string // ExprVarRef: source-level subscript tokens

	CallFunc string  // ExprCall: source-level function name
	CallArgs []*Expr // ExprCall

	BinOp    string // ExprBinary
	BinLeft  *Expr
	BinRight *Expr

	UnaryOp      string // ExprUnary
	UnaryOperand *Expr

	Points [][2]float64 // ExprLookupTable

	// Initial marks that this sub-expression only contributes to the
	// variable's initReferences (e.g. the second argument of INTEG, or
	// the body of an explicit INITIAL(...) wrapper), not its normal
	// evaluation references.
	Initial bool
}

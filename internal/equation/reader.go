// Package equation implements the Equation Reader (§4.6): it classifies
// each variable's VarType from its right-hand-side expression tree, and
// walks that tree to populate references, initReferences, and the
// referenced-function/lookup-variable name sets, using the Reference
// Resolver to turn textual variable references into refIds.
package equation

import (
	"sort"

	"github.com/sdflow/modelanalyzer/internal/canon"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/reference"
	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// timeVarName mirrors reader.TimeVarName; duplicated rather than imported to
// keep this package independent of the Variable Reader's package.
const timeVarName = "_time"

// levelIntrinsics are the canonical function names that make their owning
// variable a level (stock): the presence of one of these at the top of a
// variable's RHS means the variable integrates over time and the call's
// final argument is its initial value, not an ongoing reference.
var levelIntrinsics = map[string]bool{
	"_integ":          true,
	"_active_initial":  true,
	"_delay_fixed":     true,
	"_smooth":          true,
	"_smoothi":         true,
	"_smooth3":         true,
	"_smooth3i":        true,
	"_delay1":          true,
	"_delay1i":         true,
	"_delay3":          true,
	"_delay3i":         true,
	"_delayn":          true,
	"_trend":           true,
}

// dataIntrinsics are canonical function names that import external data,
// making their owning variable a data variable.
var dataIntrinsics = map[string]bool{
	"_get_direct_data":       true,
	"_get_direct_lookups":    true,
	"_get_direct_constants":  true,
	"_get_direct_subscript":  true,
}

// Reader classifies variables and resolves their reference sets.
type Reader struct {
	Names *canon.Registry
	Dims  *subscript.Table
	Vars  *vartable.Table
	Refs  *reference.Resolver
}

// New creates an equation Reader. Refs must already have DetectNonApplyToAll
// and AssignRefIDs run against Vars (§2's data-flow ordering: the Reference
// Resolver runs before the Equation Reader).
func New(names *canon.Registry, dims *subscript.Table, vars *vartable.Table, refs *reference.Resolver) *Reader {
	return &Reader{Names: names, Dims: dims, Vars: vars, Refs: refs}
}

// ReadAll classifies and resolves references for every variable in the
// table. It is idempotent: re-running it on an already-classified table
// recomputes the same result, since it derives everything from RHS/VarName
// alone.
func (r *Reader) ReadAll() {
	for _, v := range r.Vars.All() {
		r.classify(v)
		v.References = nil
		v.InitReferences = nil
		v.ReferencedFunctionNames = nil
		v.ReferencedLookupVarNames = nil
		if v.RHS != nil {
			r.walk(v, v.RHS, false)
		}
		sort.Strings(v.References)
		sort.Strings(v.InitReferences)
		sort.Strings(v.ReferencedFunctionNames)
		sort.Strings(v.ReferencedLookupVarNames)
	}
}

// classify sets v.VarType (and HasInitValue) from the top of its RHS, per
// §4.6: a bare number is a constant, a known integration-style call makes a
// level, a known data-import call makes a data variable, anything else is
// an auxiliary. Lookup-table variables are already typed by the Variable
// Reader and are left untouched; variables with no RHS at all (data
// variables with a blank equation, and the time placeholder) become data
// variables.
func (r *Reader) classify(v *vartable.Variable) {
	if v.VarType == vartable.TypeLookup {
		return
	}
	if v.RHS == nil {
		v.VarType = vartable.TypeData
		return
	}
	switch v.RHS.Kind {
	case parsetree.ExprNumber:
		v.VarType = vartable.TypeConst
	case parsetree.ExprCall:
		fn := canon.Name(v.RHS.CallFunc)
		switch {
		case levelIntrinsics[fn]:
			v.VarType = vartable.TypeLevel
			v.HasInitValue = true
		case dataIntrinsics[fn]:
			v.VarType = vartable.TypeData
		default:
			v.VarType = vartable.TypeAux
		}
	default:
		v.VarType = vartable.TypeAux
	}
}

// walk traverses e, recording variable references (into v.References or,
// when initCtx is true, v.InitReferences) and referenced function/lookup
// names.
func (r *Reader) walk(v *vartable.Variable, e *parsetree.Expr, initCtx bool) {
	if e == nil {
		return
	}
	init := initCtx || e.Initial

	switch e.Kind {
	case parsetree.ExprNumber:
		// nothing to collect
	case parsetree.ExprVarRef:
		r.resolveRef(v, e.VarName, e.VarSubscripts, init)
	case parsetree.ExprBinary:
		r.walk(v, e.BinLeft, init)
		r.walk(v, e.BinRight, init)
	case parsetree.ExprUnary:
		r.walk(v, e.UnaryOperand, init)
	case parsetree.ExprLookupTable:
		// inline table, no references
	case parsetree.ExprCall:
		r.walkCall(v, e, init)
	}
}

func (r *Reader) walkCall(v *vartable.Variable, e *parsetree.Expr, init bool) {
	fn := canon.Name(e.CallFunc)

	if lv, ok := r.Vars.VarWithName(fn); ok && lv.VarType == vartable.TypeLookup {
		v.ReferencedLookupVarNames = appendUnique(v.ReferencedLookupVarNames, lv.VarName)
		for _, arg := range e.CallArgs {
			r.walk(v, arg, init)
		}
		return
	}

	v.ReferencedFunctionNames = appendUnique(v.ReferencedFunctionNames, fn)

	if levelIntrinsics[fn] && len(e.CallArgs) > 0 {
		last := len(e.CallArgs) - 1
		for i, arg := range e.CallArgs {
			r.walk(v, arg, i == last)
		}
		return
	}

	for _, arg := range e.CallArgs {
		r.walk(v, arg, init)
	}
}

func (r *Reader) resolveRef(v *vartable.Variable, varName string, subscripts []string, init bool) {
	name := r.Names.Record(varName)
	subs := make([]string, len(subscripts))
	for i, tok := range subscripts {
		subs[i] = r.Names.Record(tok)
	}
	subs = r.Dims.NormalOrder(subs)

	refID, ok := r.Refs.Resolve(name, subs)
	if !ok {
		return
	}
	if init {
		v.InitReferences = appendUnique(v.InitReferences, refID)
	} else {
		v.References = appendUnique(v.References, refID)
	}
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// Package reader implements the Variable Reader (§4.4): it walks a parsed
// model's dimension and equation declarations, registers dimensions into a
// subscript.Table, and produces one vartable.Variable per equation head
// (more than one when an equation is separated per §4.4's specialSeparationDims
// rule).
package reader

import (
	"github.com/sdflow/modelanalyzer/internal/canon"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// TimeVarName is the canonical name of the always-present time placeholder.
const TimeVarName = "_time"

// Reader walks a parse tree, registering dimensions into a subscript.Table
// and variables into a vartable.Table.
type Reader struct {
	Names              *canon.Registry
	Dims               *subscript.Table
	Vars               *vartable.Table
	SpecialSeparation  map[string]string // canonical varName -> canonical dimension name to split on

	timeAdded bool
}

// New creates a Reader over the given (already constructed) tables.
func New(names *canon.Registry, dims *subscript.Table, vars *vartable.Table) *Reader {
	return &Reader{Names: names, Dims: dims, Vars: vars, SpecialSeparation: map[string]string{}}
}

// Read walks tree in two passes: dimension declarations are registered and
// resolved first, then equations are read. The two passes are required
// because specialSeparationDims splitting (readEquation, below) needs a
// dimension's expanded index list (Dims.Resolve's Value), which isn't
// available until every declaration — wherever it appears in the tree,
// including a Legacy-shape tree where dimension and equation nodes can be
// interleaved — has been registered and resolved. Read calls Dims.Resolve
// itself; it is safe to call again afterward (Resolve is idempotent) if a
// caller has more dimensions to add.
func (r *Reader) Read(tree *parsetree.Tree) error {
	var firstErr error
	parsetree.Visit(tree,
		func(d parsetree.DimensionDef) {
			if firstErr != nil {
				return
			}
			if err := r.readDimension(d); err != nil {
				firstErr = err
			}
		},
		func(parsetree.EquationDef) {},
	)
	if firstErr != nil {
		return firstErr
	}
	if err := r.Dims.Resolve(); err != nil {
		return err
	}

	parsetree.Visit(tree,
		func(parsetree.DimensionDef) {},
		func(e parsetree.EquationDef) {
			r.readEquation(e)
		},
	)
	r.ensureTimePlaceholder()
	return nil
}

func (r *Reader) readDimension(d parsetree.DimensionDef) error {
	name := r.Names.Record(d.Name)
	if d.IsAlias {
		family := r.Names.Record(d.FamilyName)
		return r.Dims.AddAlias(name, family)
	}

	modelValue := make([]string, len(d.ModelValue))
	for i, tok := range d.ModelValue {
		modelValue[i] = r.Names.Record(tok)
	}

	var mappings map[string][]string
	if len(d.Mappings) > 0 {
		mappings = make(map[string][]string, len(d.Mappings))
		for toDim, toks := range d.Mappings {
			canonTo := r.Names.Record(toDim)
			canonToks := make([]string, len(toks))
			for i, tok := range toks {
				canonToks[i] = r.Names.Record(tok)
			}
			mappings[canonTo] = canonToks
		}
	}
	return r.Dims.AddDimension(name, modelValue, mappings)
}

// readEquation produces one or more variables for e, splitting on any
// dimension named in SpecialSeparation for this varName.
func (r *Reader) readEquation(e parsetree.EquationDef) {
	varName := r.Names.Record(e.LHSName)

	subs := make([]string, len(e.LHSSubscripts))
	for i, tok := range e.LHSSubscripts {
		subs[i] = r.Names.Record(tok)
	}
	subs = r.Dims.NormalOrder(subs)

	splitDim, needsSplit := r.SpecialSeparation[varName]
	var splitPos = -1
	if needsSplit {
		for i, s := range subs {
			if s == splitDim {
				splitPos = i
				break
			}
		}
	}

	if splitPos < 0 {
		r.addVariable(varName, subs, e)
		return
	}

	dim, ok := r.Dims.Sub(splitDim)
	if !ok {
		r.addVariable(varName, subs, e) // dimension unknown at read time; leave unsplit
		return
	}
	d, ok := dim.(*subscript.Dimension)
	if !ok {
		r.addVariable(varName, subs, e)
		return
	}
	for _, idxName := range d.Value {
		variant := append([]string(nil), subs...)
		variant[splitPos] = idxName
		r.addVariable(varName, variant, e)
	}
}

func (r *Reader) addVariable(varName string, subs []string, e parsetree.EquationDef) {
	v := &vartable.Variable{
		VarName:      varName,
		ModelLHS:     e.ModelLHS,
		ModelFormula: e.ModelFormula,
		Subscripts:   subs,
	}
	if e.Formula.Kind == parsetree.FormulaLookupTable {
		v.VarType = vartable.TypeLookup
		for _, p := range e.Formula.Points {
			v.Points = append(v.Points, vartable.Point{X: p[0], Y: p[1]})
		}
	} else {
		v.RHS = e.Formula.Expr
	}
	r.Vars.Add(v)
}

func (r *Reader) ensureTimePlaceholder() {
	if r.timeAdded {
		return
	}
	if _, ok := r.Vars.VarWithName(TimeVarName); ok {
		r.timeAdded = true
		return
	}
	r.Vars.Add(&vartable.Variable{VarName: TimeVarName, ModelLHS: "Time"})
	r.timeAdded = true
}

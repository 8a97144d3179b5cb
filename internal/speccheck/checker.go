package speccheck

import (
	"strconv"
	"strings"

	"github.com/sdflow/modelanalyzer/internal/canon"
	"github.com/sdflow/modelanalyzer/internal/errs"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/reader"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// Point is one (time, value) sample of an external data series.
type Point struct {
	Time, Value float64
}

// Checker validates a Spec's input/output names against the variable
// table, synthesizing lookup equations from external data for names the
// model itself never declared, and removes variables unreachable from the
// spec's declared inputs and outputs.
type Checker struct {
	Names   *canon.Registry
	Vars    *vartable.Table
	Reader  *reader.Reader
	ExtData map[string][]Point // canonical varName -> time series
}

// New creates a Checker.
func New(names *canon.Registry, vars *vartable.Table, rdr *reader.Reader, extData map[string][]Point) *Checker {
	return &Checker{Names: names, Vars: vars, Reader: rdr, ExtData: extData}
}

// Check implements §4.7's checking step: for every declared input and
// output name, a backing variable must exist, or be synthesizable from
// ExtData. It returns the first SpecMismatch or ParseError encountered.
func (c *Checker) Check(spec Spec) error {
	for _, name := range spec.InputVars {
		if err := c.checkOne("inputVars", name, false); err != nil {
			return err
		}
	}
	for _, name := range spec.InputVarNames {
		if err := c.checkOne("inputVars", name, true); err != nil {
			return err
		}
	}
	for _, name := range spec.OutputVars {
		if err := c.checkOne("outputVars", name, false); err != nil {
			return err
		}
	}
	for _, name := range spec.OutputVarNames {
		if err := c.checkOne("outputVars", name, true); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkOne(field, rawName string, isSourceName bool) error {
	// Output names may carry a subscript, e.g. "gdp[region1]"; only the
	// base name needs a backing variable.
	base := rawName
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}

	name := base
	if isSourceName {
		name = c.Names.Record(base)
	}

	if _, ok := c.Vars.VarWithName(name); ok {
		return nil
	}

	series, ok := c.ExtData[name]
	if !ok {
		source := rawName
		if !isSourceName {
			source = c.Names.VensimName(name)
		}
		return &errs.SpecMismatch{Field: field, Name: name, Source: source, Stage: "speccheck"}
	}

	return c.synthesizeLookup(name, series)
}

// synthesizeLookup builds and reads the equation "name = WITH LOOKUP(Time,
// ((t1,v1), ...))" through the same Variable Reader path every other
// equation takes (§9 open question (c)), rather than injecting a Variable
// record directly. WITH LOOKUP is modeled as two equations: a standalone
// lookup curve carrying the points, and the named variable itself calling
// that curve against Time — so the synthesized variable classifies as an
// ordinary aux with a lookup reference, not as a lookup variable itself.
func (c *Checker) synthesizeLookup(canonicalName string, series []Point) error {
	points := make([][2]float64, len(series))
	for i, p := range series {
		points[i] = [2]float64{p.Time, p.Value}
	}

	display := c.Names.VensimName(canonicalName)
	curveName := display + " Lookup"

	curve := parsetree.EquationDef{
		LHSName:      curveName,
		ModelLHS:     curveName,
		ModelFormula: renderLookupLiteral(points),
		Formula:      parsetree.Formula{Kind: parsetree.FormulaLookupTable, Points: points},
	}
	main := parsetree.EquationDef{
		LHSName:      display,
		ModelLHS:     display,
		ModelFormula: "WITH LOOKUP(Time, " + renderLookupLiteral(points) + ")",
		Formula: parsetree.Formula{
			Kind: parsetree.FormulaExpr,
			Expr: &parsetree.Expr{
				Kind:     parsetree.ExprCall,
				CallFunc: curveName,
				CallArgs: []*parsetree.Expr{{Kind: parsetree.ExprVarRef, VarName: "Time"}},
			},
		},
	}

	tree := &parsetree.Tree{Shape: parsetree.Modern, Equations: []parsetree.EquationDef{curve, main}}
	if err := c.Reader.Read(tree); err != nil {
		return &errs.ParseError{Name: canonicalName, Source: display, Stage: "speccheck", Err: err}
	}
	return nil
}

func renderLookupLiteral(points [][2]float64) string {
	var b strings.Builder
	b.WriteString("(")
	for i, p := range points {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		b.WriteString(formatFloat(p[0]))
		b.WriteString(",")
		b.WriteString(formatFloat(p[1]))
		b.WriteString(")")
	}
	b.WriteString(")")
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

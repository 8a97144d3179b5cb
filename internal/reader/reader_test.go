package reader

import (
	"testing"

	"github.com/sdflow/modelanalyzer/internal/canon"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

func newReader() (*Reader, *subscript.Table, *vartable.Table) {
	dims := subscript.NewTable()
	vars := vartable.New()
	names := canon.NewRegistry()
	return New(names, dims, vars), dims, vars
}

func TestScalarEquationProducesOneVariable(t *testing.T) {
	r, _, vars := newReader()
	tree := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "a", ModelLHS: "a", ModelFormula: "1", Formula: parsetree.Formula{
				Kind: parsetree.FormulaExpr,
				Expr: &parsetree.Expr{Kind: parsetree.ExprNumber, Number: 1},
			}},
		},
	}
	if err := r.Read(tree); err != nil {
		t.Fatal(err)
	}
	a, ok := vars.VarWithName("_a")
	if !ok {
		t.Fatal("_a not found")
	}
	if len(a.Subscripts) != 0 {
		t.Errorf("scalar variable should have no subscripts, got %v", a.Subscripts)
	}
	if _, ok := vars.VarWithName(TimeVarName); !ok {
		t.Error("_time placeholder should always be added")
	}
}

func TestTimePlaceholderAddedOnlyOnce(t *testing.T) {
	r, _, vars := newReader()
	tree := &parsetree.Tree{Shape: parsetree.Modern}
	if err := r.Read(tree); err != nil {
		t.Fatal(err)
	}
	if err := r.Read(tree); err != nil {
		t.Fatal(err)
	}
	if len(vars.VarsWithName(TimeVarName)) != 1 {
		t.Errorf("expected exactly one _time variable, got %d", len(vars.VarsWithName(TimeVarName)))
	}
}

func TestSpecialSeparationSplitsIntoOneVariablePerIndex(t *testing.T) {
	r, dims, vars := newReader()
	_ = dims.AddDimension("_r", []string{"_r1", "_r2"}, nil)
	if err := dims.Resolve(); err != nil {
		t.Fatal(err)
	}
	r.SpecialSeparation["_v"] = "_r"

	tree := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "v", LHSSubscripts: []string{"_r"}, ModelLHS: "v[R]", ModelFormula: "1"},
		},
	}
	if err := r.Read(tree); err != nil {
		t.Fatal(err)
	}

	variants := vars.VarsWithName("_v")
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants after separation, got %d", len(variants))
	}
	if variants[0].Subscripts[0] != "_r1" || variants[1].Subscripts[0] != "_r2" {
		t.Errorf("expected variants substituted with _r1, _r2, got %v, %v", variants[0].Subscripts, variants[1].Subscripts)
	}
}

func TestLookupTableEquationPresetsType(t *testing.T) {
	r, _, vars := newReader()
	tree := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "lk", ModelLHS: "lk", ModelFormula: "((0,0),(1,1))", Formula: parsetree.Formula{
				Kind:   parsetree.FormulaLookupTable,
				Points: [][2]float64{{0, 0}, {1, 1}},
			}},
		},
	}
	if err := r.Read(tree); err != nil {
		t.Fatal(err)
	}
	lk, ok := vars.VarWithName("_lk")
	if !ok {
		t.Fatal("_lk not found")
	}
	if lk.VarType != vartable.TypeLookup {
		t.Errorf("VarType = %v, want lookup", lk.VarType)
	}
	if len(lk.Points) != 2 {
		t.Errorf("Points = %v, want 2 entries", lk.Points)
	}
}

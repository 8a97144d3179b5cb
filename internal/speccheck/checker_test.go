package speccheck

import (
	"errors"
	"testing"

	"github.com/sdflow/modelanalyzer/internal/canon"
	"github.com/sdflow/modelanalyzer/internal/errs"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/reader"
	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

func newChecker(t *testing.T, extData map[string][]Point) (*Checker, *vartable.Table) {
	t.Helper()
	names := canon.NewRegistry()
	dims := subscript.NewTable()
	vars := vartable.New()
	rdr := reader.New(names, dims, vars)
	return New(names, vars, rdr, extData), vars
}

func TestCheckMissingOutputWithNoExtDataIsSpecMismatch(t *testing.T) {
	c, _ := newChecker(t, nil)
	err := c.Check(Spec{OutputVarNames: []string{"GDP"}})
	var mismatch *errs.SpecMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want *errs.SpecMismatch", err)
	}
	if mismatch.Field != "outputVars" {
		t.Errorf("Field = %q, want outputVars", mismatch.Field)
	}
}

func TestCheckSynthesizesLookupFromExtData(t *testing.T) {
	c, vars := newChecker(t, map[string][]Point{
		"_gdp": {{Time: 0, Value: 100}, {Time: 1, Value: 110}},
	})
	if err := c.Check(Spec{OutputVarNames: []string{"GDP"}}); err != nil {
		t.Fatal(err)
	}
	gdp, ok := vars.VarWithName("_gdp")
	if !ok {
		t.Fatal("_gdp was not synthesized")
	}
	if gdp.RHS == nil || gdp.RHS.Kind != parsetree.ExprCall {
		t.Fatalf("gdp.RHS = %+v, want a call to the synthesized lookup curve", gdp.RHS)
	}
	curve, ok := vars.VarWithName("_gdp_lookup")
	if !ok {
		t.Fatal("_gdp_lookup curve was not synthesized")
	}
	if curve.VarType != vartable.TypeLookup {
		t.Errorf("curve VarType = %v, want lookup", curve.VarType)
	}
	if len(curve.Points) != 2 || curve.Points[1].Y != 110 {
		t.Errorf("curve.Points = %v, want [(0,100),(1,110)]", curve.Points)
	}
}

func TestCheckPassesWhenVariableAlreadyExists(t *testing.T) {
	c, vars := newChecker(t, nil)
	vars.Add(&vartable.Variable{VarName: "_gdp", VarType: vartable.TypeAux})
	if err := c.Check(Spec{OutputVarNames: []string{"GDP"}}); err != nil {
		t.Fatal(err)
	}
}

func TestEliminateDeadCodeDropsUnreachable(t *testing.T) {
	c, vars := newChecker(t, nil)
	a := &vartable.Variable{VarName: "_a", RefID: "_a", VarType: vartable.TypeConst}
	out := &vartable.Variable{VarName: "_out", RefID: "_out", VarType: vartable.TypeAux, References: []string{"_a"}}
	unused := &vartable.Variable{VarName: "_unused", RefID: "_unused", VarType: vartable.TypeAux}
	vars.Add(a)
	vars.Add(out)
	vars.Add(unused)

	c.EliminateDeadCode(Spec{InputVars: []string{"_a"}, OutputVars: []string{"_out"}})

	if _, ok := vars.VarWithName("_unused"); ok {
		t.Error("_unused should have been eliminated")
	}
	if _, ok := vars.VarWithName("_a"); !ok {
		t.Error("_a (an input) should survive")
	}
	if _, ok := vars.VarWithName("_out"); !ok {
		t.Error("_out (an output) should survive")
	}
}

func TestEliminateDeadCodeNoOpWithoutBothInputsAndOutputs(t *testing.T) {
	c, vars := newChecker(t, nil)
	vars.Add(&vartable.Variable{VarName: "_unused", RefID: "_unused", VarType: vartable.TypeAux})

	c.EliminateDeadCode(Spec{OutputVars: []string{"_out"}})

	if _, ok := vars.VarWithName("_unused"); !ok {
		t.Error("no dead-code elimination should run without both inputVars and outputVars")
	}
}

func TestResolveDuplicatesPromotesConstToData(t *testing.T) {
	c, vars := newChecker(t, nil)
	k := &vartable.Variable{
		VarName: "_k", VarType: vartable.TypeConst,
		RHS: &parsetree.Expr{Kind: parsetree.ExprNumber, Number: 42},
	}
	dup := &vartable.Variable{VarName: "_k", VarType: vartable.TypeData}
	vars.Add(k)
	vars.Add(dup)

	problems := c.ResolveDuplicates()
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}

	variants := vars.VarsWithName("_k")
	if len(variants) != 1 {
		t.Fatalf("expected exactly one _k variant after resolution, got %d", len(variants))
	}
	if variants[0].VarType != vartable.TypeData {
		t.Errorf("VarType = %v, want data", variants[0].VarType)
	}
	if len(variants[0].Points) != 2 || variants[0].Points[0].Y != 42 || variants[0].Points[1].Y != 42 {
		t.Errorf("Points = %v, want [(-1e308,42),(1e308,42)]", variants[0].Points)
	}
}

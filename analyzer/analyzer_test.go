package analyzer

import (
	"testing"

	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/speccheck"
	"github.com/sdflow/modelanalyzer/internal/topo"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

func num(v float64) *parsetree.Expr { return &parsetree.Expr{Kind: parsetree.ExprNumber, Number: v} }

func varRef(name string, subs ...string) *parsetree.Expr {
	return &parsetree.Expr{Kind: parsetree.ExprVarRef, VarName: name, VarSubscripts: subs}
}

func TestScalarChain(t *testing.T) {
	tree := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "a", ModelLHS: "a", ModelFormula: "1", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(1)}},
			{LHSName: "b", ModelLHS: "b", ModelFormula: "a+2", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: &parsetree.Expr{
				Kind: parsetree.ExprBinary, BinOp: "+", BinLeft: varRef("a"), BinRight: num(2),
			}}},
			{LHSName: "c", ModelLHS: "c", ModelFormula: "b*3", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: &parsetree.Expr{
				Kind: parsetree.ExprBinary, BinOp: "*", BinLeft: varRef("b"), BinRight: num(3),
			}}},
		},
	}

	a := New()
	if err := a.Analyze(tree, Options{Spec: speccheck.Spec{OutputVarNames: []string{"c"}}}); err != nil {
		t.Fatal(err)
	}

	av, _ := a.Vars.VarWithName("_a")
	bv, _ := a.Vars.VarWithName("_b")
	cv, _ := a.Vars.VarWithName("_c")
	if av.VarType != vartable.TypeConst {
		t.Errorf("a.VarType = %v, want const", av.VarType)
	}
	if bv.VarType != vartable.TypeAux || cv.VarType != vartable.TypeAux {
		t.Errorf("b/c VarType = %v/%v, want aux/aux", bv.VarType, cv.VarType)
	}

	sorter := topo.New(a.Vars, a.Names)
	order, err := sorter.AuxLevelPhase(vartable.TypeAux)
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "_b" || order[1] != "_c" {
		t.Errorf("aux order = %v, want [_b _c]", order)
	}
}

func TestApplyToAllArray(t *testing.T) {
	tree := &parsetree.Tree{
		Shape:      parsetree.Modern,
		Dimensions: []parsetree.DimensionDef{{Name: "R", ModelValue: []string{"r1", "r2"}}},
		Equations: []parsetree.EquationDef{
			{LHSName: "x", LHSSubscripts: []string{"R"}, ModelLHS: "x[R]", ModelFormula: "10",
				Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(10)}},
			{LHSName: "y", LHSSubscripts: []string{"R"}, ModelLHS: "y[R]", ModelFormula: "x[R]+1",
				Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: &parsetree.Expr{
					Kind: parsetree.ExprBinary, BinOp: "+", BinLeft: varRef("x", "R"), BinRight: num(1),
				}}},
		},
	}

	a := New()
	if err := a.Analyze(tree, Options{Spec: speccheck.Spec{OutputVarNames: []string{"y"}}}); err != nil {
		t.Fatal(err)
	}

	x, _ := a.Vars.VarWithName("_x")
	y, _ := a.Vars.VarWithName("_y")
	if x.RefID != "_x" {
		t.Errorf("x.RefID = %q, want _x", x.RefID)
	}
	if len(y.References) != 1 || y.References[0] != "_x" {
		t.Errorf("y.References = %v, want [_x]", y.References)
	}
}

func TestNonApplyToAll(t *testing.T) {
	tree := &parsetree.Tree{
		Shape:      parsetree.Modern,
		Dimensions: []parsetree.DimensionDef{{Name: "R", ModelValue: []string{"r1", "r2"}}},
		Equations: []parsetree.EquationDef{
			{LHSName: "v", LHSSubscripts: []string{"r1"}, ModelLHS: "v[r1]", ModelFormula: "1",
				Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(1)}},
			{LHSName: "v", LHSSubscripts: []string{"r2"}, ModelLHS: "v[r2]", ModelFormula: "2",
				Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(2)}},
		},
	}

	a := New()
	if err := a.Analyze(tree, Options{}); err != nil {
		t.Fatal(err)
	}

	variants := a.Vars.VarsWithName("_v")
	if len(variants) != 2 || variants[0].RefID != "_v[_r1]" || variants[1].RefID != "_v[_r2]" {
		t.Errorf("variants = %+v, want refIds _v[_r1], _v[_r2]", variants)
	}
}

func TestLevelWithInit(t *testing.T) {
	tree := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "flow", ModelLHS: "flow", ModelFormula: "2", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(2)}},
			{LHSName: "s0", ModelLHS: "s0", ModelFormula: "5", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(5)}},
			{LHSName: "s", ModelLHS: "s", ModelFormula: "INTEG(flow,s0)", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: &parsetree.Expr{
				Kind: parsetree.ExprCall, CallFunc: "INTEG", CallArgs: []*parsetree.Expr{varRef("flow"), varRef("s0")},
			}}},
		},
	}

	a := New()
	if err := a.Analyze(tree, Options{Spec: speccheck.Spec{OutputVarNames: []string{"s"}}}); err != nil {
		t.Fatal(err)
	}

	s, _ := a.Vars.VarWithName("_s")
	if s.VarType != vartable.TypeLevel || !s.HasInitValue {
		t.Errorf("s.VarType = %v, HasInitValue = %v, want level/true", s.VarType, s.HasInitValue)
	}

	// s0 is a constant, so InitPhase filters it out; it reaches the
	// evaluation order through the const block, ahead of the init block.
	evalOrder := a.evalOrder
	idxS0, idxS := -1, -1
	for i, r := range evalOrder {
		if r == "_s0" {
			idxS0 = i
		}
		if r == "_s" {
			idxS = i
		}
	}
	if idxS0 < 0 || idxS < 0 || idxS0 > idxS {
		t.Errorf("evaluation order = %v, want _s0 before _s", evalOrder)
	}
}

func TestLevelToLevelReference(t *testing.T) {
	tree := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "a", ModelLHS: "a", ModelFormula: "INTEG(b,0)", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: &parsetree.Expr{
				Kind: parsetree.ExprCall, CallFunc: "INTEG", CallArgs: []*parsetree.Expr{varRef("b"), num(0)},
			}}},
			{LHSName: "b", ModelLHS: "b", ModelFormula: "INTEG(a,0)", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: &parsetree.Expr{
				Kind: parsetree.ExprCall, CallFunc: "INTEG", CallArgs: []*parsetree.Expr{varRef("a"), num(0)},
			}}},
		},
	}

	a := New()
	if err := a.Analyze(tree, Options{}); err != nil {
		t.Fatal(err)
	}

	av, aok := a.Vars.VarWithName("_a")
	bv, bok := a.Vars.VarWithName("_b")
	if !aok || !bok || av.VarType != vartable.TypeLevel || bv.VarType != vartable.TypeLevel {
		t.Fatal("both a and b should be levels")
	}
}

func TestSpecSuppliedExternalData(t *testing.T) {
	tree := &parsetree.Tree{Shape: parsetree.Modern}
	a := New()
	err := a.Analyze(tree, Options{
		Spec:    speccheck.Spec{OutputVarNames: []string{"GDP"}},
		ExtData: map[string][]speccheck.Point{"_gdp": {{Time: 0, Value: 100}, {Time: 1, Value: 110}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	gdp, ok := a.Vars.VarWithName("_gdp")
	if !ok {
		t.Fatal("_gdp was not synthesized")
	}
	if gdp.VarType != vartable.TypeAux {
		t.Errorf("gdp.VarType = %v, want aux", gdp.VarType)
	}
	if len(gdp.ReferencedLookupVarNames) != 1 {
		t.Errorf("gdp.ReferencedLookupVarNames = %v, want exactly one lookup reference", gdp.ReferencedLookupVarNames)
	}
}

func TestResetProducesIndependentNonInterferingRuns(t *testing.T) {
	tree := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "a", ModelLHS: "a", ModelFormula: "1", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(1)}},
		},
	}

	a := New()
	firstSession := a.Session.ID
	if err := a.Analyze(tree, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Vars.VarWithName("_a"); !ok {
		t.Fatal("_a missing after first run")
	}

	a.Reset()
	if a.Session.ID == firstSession {
		t.Error("Reset should mint a new session id")
	}
	if _, ok := a.Vars.VarWithName("_a"); ok {
		t.Error("Reset should clear the variable table")
	}

	tree2 := &parsetree.Tree{
		Shape: parsetree.Modern,
		Equations: []parsetree.EquationDef{
			{LHSName: "q", ModelLHS: "q", ModelFormula: "2", Formula: parsetree.Formula{Kind: parsetree.FormulaExpr, Expr: num(2)}},
		},
	}
	if err := a.Analyze(tree2, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Vars.VarWithName("_a"); ok {
		t.Error("second run should not see the first run's variables")
	}
	if _, ok := a.Vars.VarWithName("_q"); !ok {
		t.Error("second run should see its own variables")
	}
}

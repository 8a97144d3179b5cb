package reference

import (
	"testing"

	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

func setup(t *testing.T) (*subscript.Table, *vartable.Table) {
	t.Helper()
	dims := subscript.NewTable()
	if err := dims.AddDimension("_r", []string{"_r1", "_r2"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := dims.Resolve(); err != nil {
		t.Fatal(err)
	}
	return dims, vartable.New()
}

func TestApplyToAllRefID(t *testing.T) {
	dims, vars := setup(t)
	x := &vartable.Variable{VarName: "_x", Subscripts: []string{"_r"}}
	vars.Add(x)

	res := New(dims, vars)
	res.DetectNonApplyToAll()
	res.AssignRefIDs()

	if x.RefID != "_x" {
		t.Errorf("RefID = %q, want _x", x.RefID)
	}
}

func TestNonApplyToAllRefIDsAndExpansionFlags(t *testing.T) {
	dims, vars := setup(t)
	v1 := &vartable.Variable{VarName: "_v", Subscripts: []string{"_r1"}}
	v2 := &vartable.Variable{VarName: "_v", Subscripts: []string{"_r2"}}
	vars.Add(v1)
	vars.Add(v2)

	res := New(dims, vars)
	res.DetectNonApplyToAll()
	res.AssignRefIDs()

	if v1.RefID != "_v[_r1]" || v2.RefID != "_v[_r2]" {
		t.Errorf("RefIDs = %q, %q", v1.RefID, v2.RefID)
	}
	flags := res.ExpansionFlags["_v"]
	if len(flags) != 1 || !flags[0] {
		t.Errorf("ExpansionFlags[_v] = %v, want [true]", flags)
	}
	if len(v1.SeparationDims) != 1 || v1.SeparationDims[0] != "_r" {
		t.Errorf("v1.SeparationDims = %v, want [_r]", v1.SeparationDims)
	}
}

func TestResolveCoveringMatch(t *testing.T) {
	dims, vars := setup(t)
	v1 := &vartable.Variable{VarName: "_v", Subscripts: []string{"_r1"}}
	v2 := &vartable.Variable{VarName: "_v", Subscripts: []string{"_r2"}}
	vars.Add(v1)
	vars.Add(v2)

	res := New(dims, vars)
	res.DetectNonApplyToAll()
	res.AssignRefIDs()

	got, ok := res.Resolve("_v", []string{"_r1"})
	if !ok || got != "_v[_r1]" {
		t.Errorf("Resolve(_v,[_r1]) = %q, %v, want _v[_r1], true", got, ok)
	}
}

func TestResolveFallsBackToApplyToAll(t *testing.T) {
	dims, vars := setup(t)
	x := &vartable.Variable{VarName: "_x", Subscripts: []string{"_r"}}
	vars.Add(x)

	res := New(dims, vars)
	res.DetectNonApplyToAll()
	res.AssignRefIDs()

	got, ok := res.Resolve("_x", []string{"_r1"})
	if !ok || got != "_x" {
		t.Errorf("Resolve(_x,[_r1]) = %q, %v, want _x, true (apply-to-all fallback)", got, ok)
	}
}

func TestResolveRejectsIndexPatternAgainstDimensionReference(t *testing.T) {
	dims, vars := setup(t)
	v1 := &vartable.Variable{VarName: "_v", Subscripts: []string{"_r1"}}
	v2 := &vartable.Variable{VarName: "_v", Subscripts: []string{"_r2"}}
	vars.Add(v1)
	vars.Add(v2)

	res := New(dims, vars)
	res.DetectNonApplyToAll()
	res.AssignRefIDs()

	if _, ok := res.Resolve("_v", []string{"_r"}); ok {
		t.Error("an index-subscripted variant should not match a broader dimension reference")
	}
}

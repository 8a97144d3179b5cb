// Package reference implements the Reference Resolver (§4.5): refId
// assignment, non-apply-to-all detection, and subscript-aware resolution of
// textual references against the variable table.
package reference

import (
	"sort"
	"strings"

	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// Resolver computes refIds and resolves textual references. It is grounded
// on the corpus's internal/matching.CanonicalMatcher: both walk a
// candidate's dimension/subscript values position-wise against a filter
// (there, a CanonicalView; here, a reference's subscript list).
type Resolver struct {
	Dims *subscript.Table
	Vars *vartable.Table

	// ExpansionFlags records, per varName with 2+ variants, which
	// subscript positions vary across variants (§4.5 step 1).
	ExpansionFlags map[string][]bool
}

// New creates a Resolver over the given tables.
func New(dims *subscript.Table, vars *vartable.Table) *Resolver {
	return &Resolver{Dims: dims, Vars: vars, ExpansionFlags: make(map[string][]bool)}
}

// FormatRefID renders the canonical refId string for a base name and a
// normal-order subscript list.
func FormatRefID(varName string, subscripts []string) string {
	if len(subscripts) == 0 {
		return varName
	}
	return varName + "[" + strings.Join(subscripts, ",") + "]"
}

// DetectNonApplyToAll implements §4.5 step 1: for every varName with 2+
// variants, computes the per-position expansion flags and records each
// variant's SeparationDims (the family dimensions on which it was split).
func (r *Resolver) DetectNonApplyToAll() {
	for _, name := range r.Vars.AllVarNames() {
		variants := r.Vars.VarsWithName(name)
		if len(variants) < 2 {
			continue
		}
		arity := len(variants[0].Subscripts)
		flags := make([]bool, arity)
		for pos := 0; pos < arity; pos++ {
			first := variants[0].Subscripts[pos]
			for _, v := range variants[1:] {
				if pos >= len(v.Subscripts) || v.Subscripts[pos] != first {
					flags[pos] = true
					break
				}
			}
		}
		r.ExpansionFlags[name] = flags

		for _, v := range variants {
			var seps []string
			for pos, varies := range flags {
				if !varies || pos >= len(v.Subscripts) {
					continue
				}
				fam, ok := r.Dims.FamilyOf(v.Subscripts[pos])
				if !ok {
					fam = v.Subscripts[pos]
				}
				seps = append(seps, fam)
			}
			v.SeparationDims = seps
		}
	}
}

// AssignRefIDs implements §4.5 step 2.
func (r *Resolver) AssignRefIDs() {
	for _, name := range r.Vars.AllVarNames() {
		variants := r.Vars.VarsWithName(name)
		applyToAll := len(variants) == 1
		for _, v := range variants {
			if len(v.Subscripts) == 0 || applyToAll {
				v.RefID = v.VarName
				continue
			}
			v.RefID = FormatRefID(v.VarName, v.Subscripts)
		}
	}
}

// Resolve locates the variable a textual reference (base name plus
// normal-order subscripts, both already canonicalized) points to,
// implementing §4.5 step 3's covering-match rule.
func (r *Resolver) Resolve(name string, subs []string) (string, bool) {
	if v, ok := r.Vars.VarWithRefID(FormatRefID(name, subs)); ok {
		return v.RefID, true
	}

	variants := r.Vars.VarsWithName(name)
	var applyToAllID string
	hasApplyToAll := len(variants) == 1
	if hasApplyToAll {
		applyToAllID = variants[0].RefID
	}

	for _, v := range variants {
		if r.covers(v.Subscripts, subs) {
			return v.RefID, true
		}
	}

	if hasApplyToAll {
		return applyToAllID, true
	}
	return "", false
}

// covers reports whether pattern (a variant's subscript list) covers ref (a
// reference's subscript list), position by position.
func (r *Resolver) covers(pattern, ref []string) bool {
	if len(pattern) != len(ref) {
		return false
	}
	for i := range pattern {
		p, rf := pattern[i], ref[i]
		patternIsIndex := r.Dims.IsIndex(p)
		refIsIndex := r.Dims.IsIndex(rf)

		switch {
		case patternIsIndex && refIsIndex:
			if p != rf {
				return false
			}
		case patternIsIndex && !refIsIndex:
			// pattern names an index, reference names a (broader)
			// dimension: rejected.
			return false
		case !patternIsIndex && !refIsIndex:
			if p != rf {
				return false
			}
		default: // pattern is a dimension, reference is an index
			dim, ok := r.Dims.Sub(p)
			if !ok {
				return false
			}
			d, ok := dim.(*subscript.Dimension)
			if !ok || !contains(d.Value, rf) {
				return false
			}
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SortedExpansionVarNames returns the varNames with recorded expansion
// flags, sorted, useful for deterministic diagnostics/tests.
func (r *Resolver) SortedExpansionVarNames() []string {
	names := make([]string, 0, len(r.ExpansionFlags))
	for n := range r.ExpansionFlags {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

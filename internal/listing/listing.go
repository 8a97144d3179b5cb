// Package listing implements the Listing & Indexing stage (§4.10): the
// evaluation-order listing, the 1-based variable index map, and the
// canonical JSON/YAML serializations the code generator (and the CLI's
// "analyze" command) consume.
package listing

import (
	"sort"
	"strings"

	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/topo"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

const timeVarName = "_time"

// isHelperRefID reports whether refID names an internally generated helper
// variable, which the listing omits even when it occupies a table slot.
func isHelperRefID(refID string) bool {
	return strings.HasPrefix(refID, "__level") || strings.HasPrefix(refID, "__aux")
}

// EvaluationOrder computes the full evaluation-order refId sequence:
// constVars ++ lookupVars ++ dataVars (time pulled out into its own slot)
// ++ [_time?] ++ initVars ++ levelVars ++ auxVars. Level and aux variables
// are concatenated into one trailing run (the spec names only "auxVars" in
// this position; levels, which read their peers' previous values, are
// listed first within that run so a generator emitting them in sequence
// sees every level before the aux expressions that read it).
func EvaluationOrder(vars *vartable.Table, sorter *topo.Sorter) ([]string, error) {
	var constOrder, lookupOrder, dataOrder []string
	var timeRef string
	for _, v := range vars.All() {
		if isHelperRefID(v.RefID) {
			continue
		}
		switch v.VarType {
		case vartable.TypeConst:
			constOrder = append(constOrder, v.RefID)
		case vartable.TypeLookup:
			lookupOrder = append(lookupOrder, v.RefID)
		case vartable.TypeData:
			if v.VarName == timeVarName {
				timeRef = v.RefID
				continue
			}
			dataOrder = append(dataOrder, v.RefID)
		}
	}

	levelOrder, err := sorter.AuxLevelPhase(vartable.TypeLevel)
	if err != nil {
		return nil, err
	}
	auxOrder, err := sorter.AuxLevelPhase(vartable.TypeAux)
	if err != nil {
		return nil, err
	}
	initOrder, err := sorter.InitPhase()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(constOrder)+len(lookupOrder)+len(dataOrder)+1+len(initOrder)+len(levelOrder)+len(auxOrder))
	out = append(out, constOrder...)
	out = append(out, lookupOrder...)
	out = append(out, dataOrder...)
	if timeRef != "" {
		out = append(out, timeRef)
	}
	out = append(out, filterHelpers(initOrder)...)
	out = append(out, filterHelpers(levelOrder)...)
	out = append(out, filterHelpers(auxOrder)...)
	return out, nil
}

func filterHelpers(refIDs []string) []string {
	out := make([]string, 0, len(refIDs))
	for _, r := range refIDs {
		if !isHelperRefID(r) {
			out = append(out, r)
		}
	}
	return out
}

// VarIndexEntry is one row of the variable index map (§4.10).
type VarIndexEntry struct {
	VarName        string `json:"varName" yaml:"varName"`
	VarIndex       int    `json:"varIndex" yaml:"varIndex"`
	SubscriptCount int    `json:"subscriptCount" yaml:"subscriptCount"`
}

// VarIndexInfo assigns 1-based indices to each unique varName encountered
// in evalOrder, skipping lookup and data variables, in the order the name
// was first seen in evalOrder. The returned entries are sorted by varName.
func VarIndexInfo(vars *vartable.Table, evalOrder []string) []VarIndexEntry {
	var entries []VarIndexEntry
	seen := map[string]bool{}
	idx := 0
	for _, refID := range evalOrder {
		v, ok := vars.VarWithRefID(refID)
		if !ok || seen[v.VarName] {
			continue
		}
		if v.VarType == vartable.TypeLookup || v.VarType == vartable.TypeData {
			continue
		}
		seen[v.VarName] = true
		idx++
		entries = append(entries, VarIndexEntry{
			VarName:        v.VarName,
			VarIndex:       idx,
			SubscriptCount: len(v.Subscripts),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].VarName < entries[j].VarName })
	return entries
}

// DimensionEntry is one row of the listing's dimensions section.
type DimensionEntry struct {
	Name   string   `json:"name" yaml:"name"`
	Family string   `json:"family" yaml:"family"`
	Size   int      `json:"size" yaml:"size"`
	Value  []string `json:"value" yaml:"value"`
}

// VariableEntry is one row of the listing's variables section, projecting
// exactly the fields §4.10 names.
type VariableEntry struct {
	RefID          string   `json:"refId" yaml:"refId"`
	VarName        string   `json:"varName" yaml:"varName"`
	Subscripts     []string `json:"subscripts,omitempty" yaml:"subscripts,omitempty"`
	Families       []string `json:"families,omitempty" yaml:"families,omitempty"`
	References     []string `json:"references,omitempty" yaml:"references,omitempty"`
	InitReferences []string `json:"initReferences,omitempty" yaml:"initReferences,omitempty"`
	HasInitValue   bool     `json:"hasInitValue" yaml:"hasInitValue"`
	VarType        string   `json:"varType" yaml:"varType"`
	SeparationDims []string `json:"separationDims,omitempty" yaml:"separationDims,omitempty"`
	ModelLHS       string   `json:"modelLHS" yaml:"modelLHS"`
	ModelFormula   string   `json:"modelFormula" yaml:"modelFormula"`
	VarIndex       int      `json:"varIndex,omitempty" yaml:"varIndex,omitempty"`
}

// Listing is the full serialized output: dimensions sorted by name, then
// variables in evaluation order.
type Listing struct {
	Dimensions []DimensionEntry `json:"dimensions" yaml:"dimensions"`
	Variables  []VariableEntry  `json:"variables" yaml:"variables"`
}

// Build assembles the full Listing from a resolved dimension table, a
// variable table, and that variable table's evaluation order.
func Build(dims *subscript.Table, vars *vartable.Table, evalOrder []string) Listing {
	dimEntries := make([]DimensionEntry, 0, len(dims.AllDimensions()))
	for _, d := range dims.AllDimensions() {
		dimEntries = append(dimEntries, DimensionEntry{
			Name:   d.Name,
			Family: d.Family,
			Size:   d.Size(),
			Value:  d.Value,
		})
	}
	sort.Slice(dimEntries, func(i, j int) bool { return dimEntries[i].Name < dimEntries[j].Name })

	indexByName := map[string]int{}
	for _, e := range VarIndexInfo(vars, evalOrder) {
		indexByName[e.VarName] = e.VarIndex
	}

	varEntries := make([]VariableEntry, 0, len(evalOrder))
	for _, refID := range evalOrder {
		v, ok := vars.VarWithRefID(refID)
		if !ok {
			continue
		}
		var families []string
		for _, s := range v.Subscripts {
			if fam, ok := dims.FamilyOf(s); ok {
				families = append(families, fam)
			}
		}
		varEntries = append(varEntries, VariableEntry{
			RefID:          v.RefID,
			VarName:        v.VarName,
			Subscripts:     v.Subscripts,
			Families:       families,
			References:     v.References,
			InitReferences: v.InitReferences,
			HasInitValue:   v.HasInitValue,
			VarType:        v.VarType.String(),
			SeparationDims: v.SeparationDims,
			ModelLHS:       v.ModelLHS,
			ModelFormula:   v.ModelFormula,
			VarIndex:       indexByName[v.VarName],
		})
	}

	return Listing{Dimensions: dimEntries, Variables: varEntries}
}

package vartable

import "sort"

// Table is the variable table (§4.3): a mapping from canonical varName to
// its ordered list of variants, plus an append-only list preserving
// insertion order for stable iteration, the same shape the corpus's
// types.DimensionSet gives dimensions (ordered slice + byName index).
type Table struct {
	byName map[string][]*Variable
	all    []*Variable
}

// New creates an empty variable table.
func New() *Table {
	return &Table{byName: make(map[string][]*Variable)}
}

// Add appends v to the table, under v.VarName.
func (t *Table) Add(v *Variable) {
	t.byName[v.VarName] = append(t.byName[v.VarName], v)
	t.all = append(t.all, v)
}

// VarsWithName returns every variant declared under name, in insertion order.
func (t *Table) VarsWithName(name string) []*Variable {
	return t.byName[name]
}

// VarWithName returns the first variant declared under name.
func (t *Table) VarWithName(name string) (*Variable, bool) {
	vs := t.byName[name]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// RefIDsWithName returns the refId of every variant declared under name,
// in insertion order.
func (t *Table) RefIDsWithName(name string) []string {
	vs := t.byName[name]
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.RefID)
	}
	return ids
}

// AllVarNames returns every distinct varName in the table, sorted.
func (t *Table) AllVarNames() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every variable in insertion order.
func (t *Table) All() []*Variable {
	return t.all
}

// VarWithRefID returns the variable whose RefID exactly matches refID.
func (t *Table) VarWithRefID(refID string) (*Variable, bool) {
	for _, v := range t.all {
		if v.RefID == refID {
			return v, true
		}
	}
	return nil, false
}

// Remove drops every variable for which keep returns false, rebuilding the
// by-name index. Used by dead-code elimination (§4.7).
func (t *Table) Remove(keep func(*Variable) bool) {
	kept := t.all[:0:0]
	for _, v := range t.all {
		if keep(v) {
			kept = append(kept, v)
		}
	}
	t.all = kept

	byName := make(map[string][]*Variable, len(t.byName))
	for _, v := range t.all {
		byName[v.VarName] = append(byName[v.VarName], v)
	}
	t.byName = byName
}

// Reset empties the table entirely (§5: reset() clears the variable list
// and by-name map without disturbing the dimension table).
func (t *Table) Reset() {
	t.byName = make(map[string][]*Variable)
	t.all = nil
}

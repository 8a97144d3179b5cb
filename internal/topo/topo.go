// Package topo implements the Topological Sorter (§4.9): it turns the
// aux/level and init dependency graphs into deterministic evaluation
// orders, with stable insertion-order tie-breaking the way the corpus's
// nanostore/query/sort.go sortDocuments breaks ties in an explicit chain
// rather than leaving them to map iteration order.
package topo

import (
	"sort"

	"github.com/sdflow/modelanalyzer/internal/canon"
	"github.com/sdflow/modelanalyzer/internal/errs"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// Edge is a directed dependency edge between two refIds: From depends on
// To, so To must be evaluated first.
type Edge struct {
	From, To string
}

// Sorter builds evaluation orders from a variable table.
type Sorter struct {
	Vars  *vartable.Table
	Names *canon.Registry
}

// New creates a Sorter.
func New(vars *vartable.Table, names *canon.Registry) *Sorter {
	return &Sorter{Vars: vars, Names: names}
}

// AuxLevelPhase builds the evaluation order for all variables of the given
// type (TypeAux or TypeLevel), per §4.9's aux/level-phase rules: edges
// follow same-type references, level-to-level references contribute no
// ordering edge at all (a level's RHS is a rate integrated over time, not
// an instantaneous dependency, so one level referencing another never
// constrains evaluation order within this phase), isolated nodes are
// prepended in stable name-sorted order, and the rest follow in dependency
// order.
func (s *Sorter) AuxLevelPhase(target vartable.VarType) ([]string, error) {
	var seed []*vartable.Variable
	for _, v := range s.Vars.All() {
		if v.VarType == target {
			seed = append(seed, v)
		}
	}

	var edges []Edge
	touched := map[string]bool{}
	if target != vartable.TypeLevel {
		for _, v := range seed {
			for _, refID := range v.References {
				refVar, ok := s.Vars.VarWithRefID(refID)
				if !ok || refVar.VarType != target {
					continue
				}
				edges = append(edges, Edge{From: v.RefID, To: refID})
				touched[v.RefID] = true
				touched[refID] = true
			}
		}
		edges = dedupeEdges(edges)
	}

	var isolated, connected []string
	for _, v := range seed {
		if touched[v.RefID] {
			connected = append(connected, v.RefID)
		} else {
			isolated = append(isolated, v.RefID)
		}
	}
	sort.Strings(isolated)

	order, cycleNode, ok := kahn(connected, edges)
	if !ok {
		return nil, s.cycleErr(cycleNode, "aux/level")
	}
	reverse(order)

	return append(isolated, order...), nil
}

// InitPhase builds the evaluation order needed to compute initial values,
// per §4.9's init-phase rules: a BFS from every hasInitValue variable,
// following initReferences for hasInitValue nodes and references for
// everything else, stopping at const variables; the result is
// toposorted, reversed, and filtered down to variables that still need
// evaluating (const, lookup and data variables are excluded).
func (s *Sorter) InitPhase() ([]string, error) {
	seen := map[string]bool{}
	var nodeOrder []string
	var queue []*vartable.Variable
	for _, v := range s.Vars.All() {
		if v.HasInitValue {
			seen[v.RefID] = true
			nodeOrder = append(nodeOrder, v.RefID)
			queue = append(queue, v)
		}
	}

	var edges []Edge
	touched := map[string]bool{}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		refs := v.References
		if v.HasInitValue {
			refs = v.InitReferences
		}
		for _, refID := range refs {
			refVar, ok := s.Vars.VarWithRefID(refID)
			if !ok {
				continue
			}
			edges = append(edges, Edge{From: v.RefID, To: refID})
			touched[v.RefID] = true
			touched[refID] = true
			if refVar.VarType != vartable.TypeConst && !seen[refID] {
				seen[refID] = true
				nodeOrder = append(nodeOrder, refID)
				queue = append(queue, refVar)
			}
		}
	}
	edges = dedupeEdges(edges)

	var isolated, connected []string
	for _, refID := range nodeOrder {
		if touched[refID] {
			connected = append(connected, refID)
		} else {
			isolated = append(isolated, refID)
		}
	}
	sort.Strings(isolated)

	order, cycleNode, ok := kahn(connected, edges)
	if !ok {
		return nil, s.cycleErr(cycleNode, "init")
	}
	reverse(order)

	full := append(isolated, order...)

	result := make([]string, 0, len(full))
	for _, refID := range full {
		v, ok := s.Vars.VarWithRefID(refID)
		if !ok {
			continue
		}
		switch v.VarType {
		case vartable.TypeConst, vartable.TypeLookup, vartable.TypeData:
			continue
		}
		result = append(result, refID)
	}
	return result, nil
}

func (s *Sorter) cycleErr(refID, phase string) error {
	name := refID
	source := refID
	if v, ok := s.Vars.VarWithRefID(refID); ok {
		name = v.VarName
		source = v.ModelLHS
	}
	if source == "" && s.Names != nil {
		source = s.Names.VensimName(name)
	}
	return &errs.Cycle{Name: name, Source: source, Stage: "topo", Phase: phase}
}

// kahn runs Kahn's algorithm over nodes and edges, breaking ties by
// scanning nodes in their given (insertion) order at each step so the
// result is deterministic. It returns the node name on which it got stuck
// when a cycle prevents full ordering.
func kahn(nodes []string, edges []Edge) (order []string, cycleNode string, ok bool) {
	indegree := make(map[string]int, len(nodes))
	adj := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		indegree[n] = 0
	}
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		indegree[e.To]++
	}

	removed := make(map[string]bool, len(nodes))
	for len(order) < len(nodes) {
		progressed := false
		for _, n := range nodes {
			if removed[n] || indegree[n] != 0 {
				continue
			}
			order = append(order, n)
			removed[n] = true
			for _, to := range adj[n] {
				indegree[to]--
			}
			progressed = true
			break
		}
		if !progressed {
			for _, n := range nodes {
				if !removed[n] {
					return nil, n, false
				}
			}
		}
	}
	return order, "", true
}

func dedupeEdges(edges []Edge) []Edge {
	seen := make(map[Edge]bool, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

package speccheck

import (
	"strings"

	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// fixedPins are always retained during dead-code elimination, regardless
// of whether the spec names them.
var fixedPins = []string{"_initial_time", "_final_time", "_saveper", "_time_step"}

// EliminateDeadCode implements §4.7's dead-code elimination: enabled only
// when spec declares both inputs and outputs, it computes the set of
// varNames reachable from the fixed pins plus every declared input and
// output, and drops every variable (all its variants) outside that set.
func (c *Checker) EliminateDeadCode(spec Spec) {
	inputs := c.canonicalBaseNames(spec.InputVars, spec.InputVarNames)
	outputs := c.canonicalBaseNames(spec.OutputVars, spec.OutputVarNames)
	if len(inputs) == 0 || len(outputs) == 0 {
		return
	}

	reachable := make(map[string]bool, len(inputs)+len(outputs)+len(fixedPins))
	var queue []string
	mark := func(name string) {
		if !reachable[name] {
			reachable[name] = true
			queue = append(queue, name)
		}
	}
	for _, p := range fixedPins {
		mark(p)
	}
	for _, n := range inputs {
		mark(n)
	}
	for _, n := range outputs {
		mark(n)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		for _, v := range c.Vars.VarsWithName(name) {
			for _, refID := range append(append([]string(nil), v.References...), v.InitReferences...) {
				if rv, ok := c.Vars.VarWithRefID(refID); ok {
					mark(rv.VarName)
				}
			}
			for _, fn := range v.ReferencedFunctionNames {
				if lv, ok := c.Vars.VarWithName(fn); ok && lv.VarType == vartable.TypeLookup {
					mark(fn)
				}
			}
			for _, lkName := range v.ReferencedLookupVarNames {
				mark(lkName)
			}
		}
	}

	c.Vars.Remove(func(v *vartable.Variable) bool { return reachable[v.VarName] })
}

// canonicalBaseNames merges a spec's canonical and source-name lists into
// one canonical, subscript-stripped base-name set.
func (c *Checker) canonicalBaseNames(canonicalList, sourceList []string) []string {
	out := make([]string, 0, len(canonicalList)+len(sourceList))
	for _, n := range canonicalList {
		out = append(out, stripSubscript(n))
	}
	for _, n := range sourceList {
		out = append(out, c.Names.Record(stripSubscript(n)))
	}
	return out
}

func stripSubscript(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

package speccheck

import (
	"github.com/sdflow/modelanalyzer/internal/errs"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// ResolveDuplicates implements §4.8: when a variable is declared both
// const and data under the same canonical varName, the const declaration
// is promoted to data with points synthesized from its constant value, and
// the separate data declaration(s) are dropped. If the constant value
// isn't a bare numeric literal, a TypeConflict is recorded and the
// variable is left unchanged.
func (c *Checker) ResolveDuplicates() []error {
	var problems []error
	drop := map[*vartable.Variable]bool{}

	for _, name := range c.Vars.AllVarNames() {
		variants := c.Vars.VarsWithName(name)
		var constVars, dataVars []*vartable.Variable
		for _, v := range variants {
			switch v.VarType {
			case vartable.TypeConst:
				constVars = append(constVars, v)
			case vartable.TypeData:
				dataVars = append(dataVars, v)
			}
		}
		if len(constVars) != 1 || len(dataVars) == 0 {
			continue
		}

		k := constVars[0]
		if k.RHS == nil || k.RHS.Kind != parsetree.ExprNumber {
			problems = append(problems, &errs.TypeConflict{
				Name: name, Source: k.ModelLHS, Stage: "speccheck",
				Reason: "const value is not a bare numeric literal, cannot synthesize data points",
			})
			continue
		}

		k.VarType = vartable.TypeData
		k.Points = []vartable.Point{{X: -1e308, Y: k.RHS.Number}, {X: 1e308, Y: k.RHS.Number}}
		k.RHS = nil
		for _, d := range dataVars {
			drop[d] = true
		}
	}

	if len(drop) > 0 {
		c.Vars.Remove(func(v *vartable.Variable) bool { return !drop[v] })
	}
	return problems
}

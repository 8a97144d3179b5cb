package equation

import (
	"fmt"
	"math"

	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// Reduction modes control how aggressively ReduceAll folds constant
// arithmetic out of RHS expression trees before the evaluation order is
// built. Folding is purely an optimization over the evaluated result; it
// never changes which refIds a variable references.
const (
	ModeOff        = "off"
	ModeDefault    = "default"
	ModeAggressive = "aggressive"
)

// Reducer folds constant subexpressions ("(3+4)*2") into single numbers.
// In ModeAggressive it additionally memoizes identical subexpressions
// across different variables' RHS trees, keyed by a canonical serialization
// of the subtree, so a shared constant expression is folded once rather
// than recomputed per occurrence.
type Reducer struct {
	Vars  *vartable.Table
	Mode  string
	cache map[string]float64
}

// NewReducer creates a Reducer. mode should be one of ModeOff, ModeDefault,
// or ModeAggressive; any other value behaves like ModeDefault.
func NewReducer(vars *vartable.Table, mode string) *Reducer {
	return &Reducer{Vars: vars, Mode: mode, cache: make(map[string]float64)}
}

// ReduceAll folds every variable's RHS in place. A no-op in ModeOff.
func (red *Reducer) ReduceAll() {
	if red.Mode == ModeOff {
		return
	}
	for _, v := range red.Vars.All() {
		if v.RHS != nil {
			v.RHS = red.fold(v.RHS)
		}
	}
}

func (red *Reducer) fold(e *parsetree.Expr) *parsetree.Expr {
	if e == nil {
		return nil
	}

	switch e.Kind {
	case parsetree.ExprNumber, parsetree.ExprVarRef, parsetree.ExprLookupTable:
		return e

	case parsetree.ExprUnary:
		operand := red.fold(e.UnaryOperand)
		if operand.Kind == parsetree.ExprNumber {
			if val, ok := applyUnary(e.UnaryOp, operand.Number); ok {
				return numberExpr(val)
			}
		}
		return &parsetree.Expr{Kind: parsetree.ExprUnary, UnaryOp: e.UnaryOp, UnaryOperand: operand, Initial: e.Initial}

	case parsetree.ExprBinary:
		left := red.fold(e.BinLeft)
		right := red.fold(e.BinRight)
		folded := &parsetree.Expr{Kind: parsetree.ExprBinary, BinOp: e.BinOp, BinLeft: left, BinRight: right, Initial: e.Initial}
		if left.Kind != parsetree.ExprNumber || right.Kind != parsetree.ExprNumber {
			return folded
		}

		key := serialize(folded)
		if val, ok := red.cache[key]; ok {
			return numberExpr(val)
		}
		val, ok := applyBinary(e.BinOp, left.Number, right.Number)
		if !ok {
			return folded
		}
		if red.Mode == ModeAggressive {
			red.cache[key] = val
		}
		return numberExpr(val)

	case parsetree.ExprCall:
		args := make([]*parsetree.Expr, len(e.CallArgs))
		for i, a := range e.CallArgs {
			args[i] = red.fold(a)
		}
		return &parsetree.Expr{Kind: parsetree.ExprCall, CallFunc: e.CallFunc, CallArgs: args, Initial: e.Initial}

	default:
		return e
	}
}

func numberExpr(v float64) *parsetree.Expr {
	return &parsetree.Expr{Kind: parsetree.ExprNumber, Number: v}
}

func applyUnary(op string, v float64) (float64, bool) {
	switch op {
	case "-":
		return -v, true
	case "+":
		return v, true
	default:
		return 0, false
	}
}

func applyBinary(op string, l, r float64) (float64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case "^":
		return math.Pow(l, r), true
	default:
		return 0, false
	}
}

// serialize renders a canonical text form of a folded subtree for use as a
// memoization cache key. It only needs to be stable and collision-free for
// the number/binary/unary shapes fold() actually caches.
func serialize(e *parsetree.Expr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case parsetree.ExprNumber:
		return fmt.Sprintf("%g", e.Number)
	case parsetree.ExprBinary:
		return "(" + serialize(e.BinLeft) + e.BinOp + serialize(e.BinRight) + ")"
	case parsetree.ExprUnary:
		return "(" + e.UnaryOp + serialize(e.UnaryOperand) + ")"
	default:
		return fmt.Sprintf("<%d>", e.Kind)
	}
}

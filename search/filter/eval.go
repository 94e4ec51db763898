package filter

import (
	"fmt"

	"github.com/spf13/cast"
)

// Metadata is the minimal map contract Eval filters against, satisfied by
// node.Node's ordered metadata through a plain accessor.
type Metadata interface {
	Get(key string) (any, bool)
}

// Eval evaluates expr against metadata, the reference evaluator used by
// store/memory and by tests; vector-store backends typically compile the
// same Expr into their native filter DSL instead (see
// ai/extensions/vectorstores/qdrant/converter.go for the pattern this
// generalizes).
func Eval(expr Expr, metadata Metadata) (bool, error) {
	if expr == nil {
		return true, nil
	}
	switch e := expr.(type) {
	case *Comparison:
		return evalComparison(e, metadata)
	case *Logical:
		return evalLogical(e, metadata)
	default:
		return false, fmt.Errorf("filter: unsupported expression node %T", expr)
	}
}

func evalLogical(e *Logical, metadata Metadata) (bool, error) {
	switch e.Op {
	case OpAnd:
		l, err := Eval(e.Left, metadata)
		if err != nil || !l {
			return false, err
		}
		return Eval(e.Right, metadata)
	case OpOr:
		l, err := Eval(e.Left, metadata)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return Eval(e.Right, metadata)
	case OpNot:
		l, err := Eval(e.Left, metadata)
		if err != nil {
			return false, err
		}
		return !l, nil
	default:
		return false, fmt.Errorf("filter: unsupported logical op %v", e.Op)
	}
}

func evalComparison(e *Comparison, metadata Metadata) (bool, error) {
	actual, ok := metadata.Get(e.Field.Name)
	if !ok {
		return false, nil
	}
	switch e.Op {
	case OpEQ:
		return equalValue(actual, e.Value.Value), nil
	case OpNEQ:
		return !equalValue(actual, e.Value.Value), nil
	case OpGT, OpGTE, OpLT, OpLTE:
		return compareNumeric(actual, e.Value.Value, e.Op)
	case OpIn:
		values, _ := e.Value.Value.([]any)
		for _, v := range values {
			if equalValue(actual, v) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("filter: unsupported comparison op %v", e.Op)
	}
}

func equalValue(a, b any) bool {
	return cast.ToString(a) == cast.ToString(b)
}

func compareNumeric(actual, want any, op Op) (bool, error) {
	af, aok := toFloat(actual)
	bf, bok := toFloat(want)
	if !aok || !bok {
		return false, fmt.Errorf("filter: non-numeric operands for ordering comparison: %v, %v", actual, want)
	}
	switch op {
	case OpGT:
		return af > bf, nil
	case OpGTE:
		return af >= bf, nil
	case OpLT:
		return af < bf, nil
	case OpLTE:
		return af <= bf, nil
	default:
		return false, fmt.Errorf("filter: not an ordering operator: %v", op)
	}
}

func toFloat(v any) (float64, bool) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

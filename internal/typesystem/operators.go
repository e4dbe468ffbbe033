package typesystem

import "github.com/funvibe/tlang/internal/config"

// Category groups binary operators that share one legality table.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryAdditive
	CategoryArithmetic
	CategoryEquality
	CategoryRelational
	CategoryLogical
)

// CategoryOf classifies a binary operator lexeme.
func CategoryOf(op string) Category {
	switch op {
	case config.OpAdd:
		return CategoryAdditive
	case config.OpSub, config.OpMul, config.OpDiv:
		return CategoryArithmetic
	case config.OpEq, config.OpNe:
		return CategoryEquality
	case config.OpLt, config.OpGt, config.OpLe, config.OpGe:
		return CategoryRelational
	case config.OpAnd, config.OpOr:
		return CategoryLogical
	}
	return CategoryUnknown
}

// isIntFloatPair reports whether {a, b} is {int, float} in either order.
func isIntFloatPair(a, b Type) bool {
	return (IsKind(a, KindInt) && IsKind(b, KindFloat)) ||
		(IsKind(a, KindFloat) && IsKind(b, KindInt))
}

func bothKind(a, b Type, k PrimKind) bool {
	return IsKind(a, k) && IsKind(b, k)
}

func anyKind(a, b Type, k PrimKind) bool {
	return IsKind(a, k) || IsKind(b, k)
}

// BinaryResult returns the result type of applying op to left and right,
// or an *OperatorError when the combination is illegal.
func BinaryResult(op string, left, right Type) (Type, error) {
	fail := &OperatorError{Op: op, Left: left, Right: right}

	switch CategoryOf(op) {
	case CategoryAdditive:
		switch {
		case isIntFloatPair(left, right):
			return Float, nil
		case bothKind(left, right, KindString):
			return String, nil
		case IsKind(left, KindString) && isConcatenable(right),
			IsKind(right, KindString) && isConcatenable(left):
			return String, nil
		case bothKind(left, right, KindInt):
			return Int, nil
		case bothKind(left, right, KindFloat):
			return Float, nil
		}
		return nil, fail

	case CategoryArithmetic:
		switch {
		case isIntFloatPair(left, right):
			return Float, nil
		case bothKind(left, right, KindInt):
			return Int, nil
		case bothKind(left, right, KindFloat):
			return Float, nil
		}
		return nil, fail

	case CategoryEquality:
		if IsPrimitive(left) && IsPrimitive(right) &&
			(Equal(left, right) || isIntFloatPair(left, right)) {
			return Bool, nil
		}
		return nil, fail

	case CategoryRelational:
		if !IsPrimitive(left) || !IsPrimitive(right) {
			return nil, fail
		}
		if bothKind(left, right, KindString) || bothKind(left, right, KindChar) {
			return Bool, nil
		}
		if anyKind(left, right, KindBool) || anyKind(left, right, KindChar) || anyKind(left, right, KindString) {
			return nil, fail
		}
		return Bool, nil

	case CategoryLogical:
		if bothKind(left, right, KindBool) {
			return Bool, nil
		}
		return nil, fail
	}
	return nil, fail
}

// isConcatenable reports whether a non-string operand may join a string with '+'.
func isConcatenable(t Type) bool {
	return IsKind(t, KindInt) || IsKind(t, KindFloat) || IsKind(t, KindChar)
}

// UnaryResult returns the result type of a prefix operator.
func UnaryResult(op string, operand Type) (Type, error) {
	switch op {
	case config.OpSub:
		if IsKind(operand, KindInt) || IsKind(operand, KindFloat) {
			return operand, nil
		}
	case config.OpNot:
		if IsKind(operand, KindBool) {
			return Bool, nil
		}
	}
	return nil, &OperatorError{Op: op, Left: operand}
}

package typesystem

import "fmt"

// OperatorError reports operand types an operator cannot be applied to.
type OperatorError struct {
	Op    string
	Left  Type
	Right Type // nil for unary operators
}

func (e *OperatorError) Error() string {
	if e.Right == nil {
		return fmt.Sprintf("operator '%s' cannot be applied to %s", e.Op, e.Left)
	}
	switch CategoryOf(e.Op) {
	case CategoryEquality, CategoryRelational:
		return fmt.Sprintf("incomparable types %s and %s", e.Left, e.Right)
	}
	return fmt.Sprintf("operator '%s' cannot be applied to %s and %s", e.Op, e.Left, e.Right)
}

// ParseError reports an unrecognized type lexeme.
type ParseError struct {
	Lexeme string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid type %q: %s", e.Lexeme, e.Reason)
	}
	return fmt.Sprintf("invalid type %q", e.Lexeme)
}

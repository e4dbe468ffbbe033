package evaluator

import (
	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/config"
)

func (e *Evaluator) evalBinary(node *ast.BinaryOperator) Object {
	switch node.Operator {
	case config.OpAnd, config.OpOr:
		return e.evalLogical(node)
	}

	left := e.evalExpr(node.Left)
	if isError(left) {
		return left
	}
	right := e.evalExpr(node.Right)
	if isError(right) {
		return right
	}
	return e.evalInfixExpression(node, left, right)
}

// evalLogical short-circuits: the right operand is evaluated only when
// the left one does not decide the result.
func (e *Evaluator) evalLogical(node *ast.BinaryOperator) Object {
	left, errObj := e.evalCondition(node.Left)
	if errObj != nil {
		return errObj
	}
	if node.Operator == config.OpAnd && !left {
		return FALSE
	}
	if node.Operator == config.OpOr && left {
		return TRUE
	}
	right, errObj := e.evalCondition(node.Right)
	if errObj != nil {
		return errObj
	}
	return nativeBoolToBooleanObject(right)
}

func (e *Evaluator) evalInfixExpression(node *ast.BinaryOperator, left, right Object) Object {
	op := node.Operator
	_, leftStr := left.(*String)
	_, rightStr := right.(*String)

	switch {
	case op == config.OpAdd && (leftStr && concatenable(right) || rightStr && concatenable(left)):
		return &String{Value: left.Inspect() + right.Inspect()}

	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return e.evalIntegerInfixExpression(node, left.(*Integer).Value, right.(*Integer).Value)

	case isNumeric(left) && isNumeric(right):
		return e.evalFloatInfixExpression(node, toFloat(left), toFloat(right))

	case leftStr && rightStr:
		return e.evalOrdered(node, left.(*String).Value, right.(*String).Value)

	case left.Type() == CHAR_OBJ && right.Type() == CHAR_OBJ:
		return e.evalOrdered(node, left.(*Char).Value, right.(*Char).Value)

	case left.Type() == BOOLEAN_OBJ && right.Type() == BOOLEAN_OBJ:
		l, r := left.(*Boolean).Value, right.(*Boolean).Value
		switch op {
		case config.OpEq:
			return nativeBoolToBooleanObject(l == r)
		case config.OpNe:
			return nativeBoolToBooleanObject(l != r)
		}
	}
	return e.newError(errRuntime, node, "operator %s is not defined for %s and %s", op, runtimeType(left), runtimeType(right))
}

func (e *Evaluator) evalIntegerInfixExpression(node *ast.BinaryOperator, l, r int64) Object {
	switch node.Operator {
	case config.OpAdd:
		return &Integer{Value: l + r}
	case config.OpSub:
		return &Integer{Value: l - r}
	case config.OpMul:
		return &Integer{Value: l * r}
	case config.OpDiv:
		if r == 0 {
			return e.newError(errDivisionByZero, node, "division by zero")
		}
		return &Integer{Value: l / r}
	}
	return e.evalOrdered(node, l, r)
}

// Float division by zero follows IEEE 754.
func (e *Evaluator) evalFloatInfixExpression(node *ast.BinaryOperator, l, r float64) Object {
	switch node.Operator {
	case config.OpAdd:
		return &Float{Value: l + r}
	case config.OpSub:
		return &Float{Value: l - r}
	case config.OpMul:
		return &Float{Value: l * r}
	case config.OpDiv:
		return &Float{Value: l / r}
	}
	return e.evalOrdered(node, l, r)
}

type ordered interface {
	~int64 | ~float64 | ~string | ~rune
}

// evalOrderedOp applies an equality or relational operator. The second
// result is false for any other operator.
func evalOrderedOp[T ordered](op string, l, r T) (bool, bool) {
	switch op {
	case config.OpEq:
		return l == r, true
	case config.OpNe:
		return l != r, true
	case config.OpLt:
		return l < r, true
	case config.OpGt:
		return l > r, true
	case config.OpLe:
		return l <= r, true
	case config.OpGe:
		return l >= r, true
	}
	return false, false
}

func (e *Evaluator) evalOrdered(node *ast.BinaryOperator, l, r any) Object {
	var result, ok bool
	switch lv := l.(type) {
	case int64:
		result, ok = evalOrderedOp(node.Operator, lv, r.(int64))
	case float64:
		result, ok = evalOrderedOp(node.Operator, lv, r.(float64))
	case string:
		result, ok = evalOrderedOp(node.Operator, lv, r.(string))
	case rune:
		result, ok = evalOrderedOp(node.Operator, lv, r.(rune))
	}
	if !ok {
		return e.newError(errRuntime, node, "unknown operator %s", node.Operator)
	}
	return nativeBoolToBooleanObject(result)
}

func (e *Evaluator) evalUnary(node *ast.UnaryOperator) Object {
	operand := e.evalExpr(node.Operand)
	if isError(operand) {
		return operand
	}

	switch node.Operator {
	case config.OpSub:
		switch v := operand.(type) {
		case *Integer:
			return &Integer{Value: -v.Value}
		case *Float:
			return &Float{Value: -v.Value}
		}
	case config.OpNot:
		if b, ok := operand.(*Boolean); ok {
			return nativeBoolToBooleanObject(!b.Value)
		}
	}
	return e.newError(errRuntime, node, "operator %s is not defined for %s", node.Operator, runtimeType(operand))
}

// concatenable reports whether obj may be joined to a string with '+'.
func concatenable(obj Object) bool {
	switch obj.Type() {
	case STRING_OBJ, INTEGER_OBJ, FLOAT_OBJ, CHAR_OBJ:
		return true
	}
	return false
}

func isNumeric(obj Object) bool {
	t := obj.Type()
	return t == INTEGER_OBJ || t == FLOAT_OBJ
}

func toFloat(obj Object) float64 {
	switch v := obj.(type) {
	case *Integer:
		return float64(v.Value)
	case *Float:
		return v.Value
	}
	return 0
}

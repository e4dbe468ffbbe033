package evaluator

import (
	"strconv"
	"unicode/utf8"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/typesystem"
)

func (e *Evaluator) evalLiteral(lit *ast.Literal) Object {
	switch lit.Kind {
	case typesystem.KindInt:
		n, err := strconv.ParseInt(lit.Raw, 10, 64)
		if err != nil {
			return e.newError(errInternal, lit, "invalid int literal %q", lit.Raw)
		}
		return &Integer{Value: n}
	case typesystem.KindFloat:
		f, err := strconv.ParseFloat(lit.Raw, 64)
		if err != nil {
			return e.newError(errInternal, lit, "invalid float literal %q", lit.Raw)
		}
		return &Float{Value: f}
	case typesystem.KindBool:
		return nativeBoolToBooleanObject(lit.Raw == "true")
	case typesystem.KindString:
		return &String{Value: lit.Raw}
	case typesystem.KindChar:
		r, size := utf8.DecodeRuneInString(lit.Raw)
		if size == 0 || size != len(lit.Raw) {
			return e.newError(errInternal, lit, "invalid char literal %q", lit.Raw)
		}
		return &Char{Value: r}
	}
	return e.newError(errInternal, lit, "unknown literal kind %v", lit.Kind)
}

// evalArrayLiteral builds a new array. Ints mixed with floats are widened.
func (e *Evaluator) evalArrayLiteral(al *ast.ArrayLiteral) Object {
	if len(al.Elements) == 0 {
		return e.newError(errRuntime, al, "array literal cannot be empty")
	}

	elements := make([]Object, len(al.Elements))
	var elem typesystem.Type
	for i, el := range al.Elements {
		obj := e.evalExpr(el)
		if isError(obj) {
			return obj
		}
		if _, nested := obj.(*Array); nested {
			return e.newError(errRuntime, el, "multidimensional arrays are not supported")
		}

		t := runtimeType(obj)
		switch {
		case elem == nil:
			elem = t
		case typesystem.Equal(elem, t):
		case typesystem.IsKind(elem, typesystem.KindFloat) && typesystem.IsKind(t, typesystem.KindInt):
		case typesystem.IsKind(elem, typesystem.KindInt) && typesystem.IsKind(t, typesystem.KindFloat):
			elem = typesystem.Float
		default:
			return e.newError(errRuntime, el, "array values must all be of the same type: %s and %s", elem, t)
		}
		elements[i] = copyObject(obj)
	}

	arr := &Array{ElemType: elem, Elements: elements}
	coerceElements(arr)
	return arr
}

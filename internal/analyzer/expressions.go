package analyzer

import (
	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/symbols"
	"github.com/funvibe/tlang/internal/typesystem"
)

// inferExpr computes the static type of an expression.
func (w *walker) inferExpr(expr ast.Expression) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Type(), nil

	case *ast.Identifier:
		sym, ok := w.variables.Lookup(e.Value)
		if !ok {
			return nil, newError(diagnostics.ErrA001, e, "cannot resolve identifier %s", e.Value)
		}
		return sym.Type, nil

	case *ast.ArrayIndexIdentifier:
		return w.inferIndex(e)

	case *ast.ArrayLiteral:
		return w.inferArrayLiteral(e)

	case *ast.BinaryOperator:
		left, err := w.inferExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := w.inferExpr(e.Right)
		if err != nil {
			return nil, err
		}
		result, opErr := typesystem.BinaryResult(e.Operator, left, right)
		if opErr != nil {
			return nil, newError(diagnostics.ErrA003, e, "%s", opErr.Error())
		}
		return result, nil

	case *ast.UnaryOperator:
		operand, err := w.inferExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		result, opErr := typesystem.UnaryResult(e.Operator, operand)
		if opErr != nil {
			return nil, newError(diagnostics.ErrA003, e, "%s", opErr.Error())
		}
		return result, nil

	case *ast.FunctionCall:
		args, err := w.inferArgs(e)
		if err != nil {
			return nil, err
		}
		return w.checkCall(e, args, w.functions)

	case *ast.StructVariableSelector:
		info, err := w.structOf(e.Base)
		if err != nil {
			return nil, err
		}
		sym, ok := info.variables.Lookup(e.Member.Value)
		if !ok {
			return nil, newError(diagnostics.ErrA001, e.Member, "struct %s has no member %s", info.decl.Name.Value, e.Member.Value)
		}
		return sym.Type, nil

	case *ast.StructFunctionSelector:
		info, err := w.structOf(e.Base)
		if err != nil {
			return nil, err
		}
		// Arguments belong to the caller; only the method lives in the struct.
		args, err := w.inferArgs(e.Call)
		if err != nil {
			return nil, err
		}
		return w.checkCall(e.Call, args, info.functions)
	}
	return nil, internalError(expr, "unknown expression %T", expr)
}

func (w *walker) inferIndex(e *ast.ArrayIndexIdentifier) (typesystem.Type, *diagnostics.DiagnosticError) {
	index, err := w.inferExpr(e.Index)
	if err != nil {
		return nil, err
	}
	if !typesystem.IsKind(index, typesystem.KindInt) {
		return nil, newError(diagnostics.ErrA003, e.Index, "array index must be of type int, got %s", index)
	}

	sym, ok := w.variables.Lookup(e.Name.Value)
	if !ok {
		return nil, newError(diagnostics.ErrA001, e.Name, "cannot resolve identifier %s", e.Name.Value)
	}
	arr, ok := sym.Type.(typesystem.TArray)
	if !ok {
		return nil, newError(diagnostics.ErrA003, e, "array type expected, got %s", sym.Type)
	}
	return arr.Elem, nil
}

// inferArrayLiteral requires homogeneous elements. Ints mixed with floats
// make a float array.
func (w *walker) inferArrayLiteral(e *ast.ArrayLiteral) (typesystem.Type, *diagnostics.DiagnosticError) {
	if len(e.Elements) == 0 {
		return nil, newError(diagnostics.ErrA003, e, "array literal cannot be empty")
	}

	var elem typesystem.Type
	for _, el := range e.Elements {
		t, err := w.inferExpr(el)
		if err != nil {
			return nil, err
		}
		if _, nested := t.(typesystem.TArray); nested {
			return nil, newError(diagnostics.ErrA003, el, "multidimensional arrays are not supported")
		}

		switch {
		case elem == nil:
			elem = t
		case typesystem.Equal(elem, t):
		case typesystem.IsKind(elem, typesystem.KindFloat) && typesystem.IsKind(t, typesystem.KindInt):
		case typesystem.IsKind(elem, typesystem.KindInt) && typesystem.IsKind(t, typesystem.KindFloat):
			elem = typesystem.Float
		default:
			return nil, newError(diagnostics.ErrA003, el, "array values must all be of the same type: %s and %s", elem, t)
		}
	}
	return typesystem.TArray{Elem: elem, Size: len(e.Elements)}, nil
}

func (w *walker) inferArgs(call *ast.FunctionCall) ([]typesystem.Type, *diagnostics.DiagnosticError) {
	args := make([]typesystem.Type, len(call.Arguments))
	for i, arg := range call.Arguments {
		t, err := w.inferExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	return args, nil
}

// checkCall resolves the overload selected by the argument types.
func (w *walker) checkCall(call *ast.FunctionCall, args []typesystem.Type, functions *symbols.FunctionTable) (typesystem.Type, *diagnostics.DiagnosticError) {
	key := symbols.Mangle(call.Name.Value, args...)
	decl, ok := functions.LookupSignature(key)
	if !ok {
		return nil, newError(diagnostics.ErrA008, call, "cannot resolve function %s", key)
	}
	if len(decl.Parameters) != len(args) {
		return nil, newError(diagnostics.ErrA003, call, "number of arguments to %s does not match: expected %d, got %d",
			call.Name.Value, len(decl.Parameters), len(args))
	}
	for i, p := range decl.Parameters {
		if !typesystem.IsCompatible(p.Type, args[i]) {
			return nil, newError(diagnostics.ErrA003, call.Arguments[i], "incorrect argument type for %s, required %s, got %s",
				p.Name.Value, p.Type, args[i])
		}
	}
	return decl.ReturnType, nil
}

// structOf resolves a variable to the struct declaration behind its type.
func (w *walker) structOf(base *ast.Identifier) (*structInfo, *diagnostics.DiagnosticError) {
	sym, ok := w.variables.Lookup(base.Value)
	if !ok {
		return nil, newError(diagnostics.ErrA001, base, "cannot resolve variable %s", base.Value)
	}
	ref, ok := sym.Type.(typesystem.TStruct)
	if !ok {
		return nil, newError(diagnostics.ErrA003, base, "%s is not a struct, got type %s", base.Value, sym.Type)
	}
	info, ok := w.structs[ref.Name]
	if !ok {
		return nil, newError(diagnostics.ErrA002, base, "cannot resolve struct type %s", ref.Name)
	}
	return info, nil
}

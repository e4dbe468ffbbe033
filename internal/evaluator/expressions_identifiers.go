package evaluator

import (
	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/symbols"
)

func (e *Evaluator) evalIdentifier(node *ast.Identifier) Object {
	sym, ok := e.env.vars.Lookup(node.Value)
	if !ok {
		return e.newError(errRuntime, node, "cannot resolve identifier %s", node.Value)
	}
	if !sym.HasValue() {
		return e.newError(errUninitialized, node, "variable %s is not initialized", node.Value)
	}
	return sym.Value.(Object)
}

func (e *Evaluator) evalIndex(node *ast.ArrayIndexIdentifier) Object {
	_, arr, errObj := e.arrayOf(node.Name)
	if errObj != nil {
		return errObj
	}
	i, errObj := e.indexOf(node, arr)
	if errObj != nil {
		return errObj
	}
	el := arr.Elements[i]
	if el == nil {
		return e.newError(errUninitialized, node, "%s[%d] is not initialized", node.Name.Value, i)
	}
	return el
}

// arrayOf resolves name to an allocated array.
func (e *Evaluator) arrayOf(name *ast.Identifier) (*symbols.Symbol, *Array, *Error) {
	sym, ok := e.env.vars.Lookup(name.Value)
	if !ok {
		return nil, nil, e.newError(errRuntime, name, "cannot resolve identifier %s", name.Value)
	}
	if !sym.HasValue() {
		return nil, nil, e.newError(errBadArray, name, "array %s has not been allocated", name.Value)
	}
	arr, ok := sym.Value.(*Array)
	if !ok {
		return nil, nil, e.newError(errRuntime, name, "array type expected, got %s", sym.Type)
	}
	return sym, arr, nil
}

// indexOf evaluates the index of node and checks it against arr's bounds.
func (e *Evaluator) indexOf(node *ast.ArrayIndexIdentifier, arr *Array) (int, *Error) {
	i, errObj := e.evalInt(node.Index)
	if errObj != nil {
		return 0, errObj
	}
	if i < 0 || i >= int64(len(arr.Elements)) {
		return 0, e.newError(errOutOfBounds, node.Index, "index %d out of bounds for %s of length %d", i, node.Name.Value, len(arr.Elements))
	}
	return int(i), nil
}

// evalInt evaluates an expression the checker typed as int.
func (e *Evaluator) evalInt(expr ast.Expression) (int64, *Error) {
	obj := e.evalExpr(expr)
	if errObj, ok := obj.(*Error); ok {
		return 0, errObj
	}
	n, ok := obj.(*Integer)
	if !ok {
		return 0, e.newError(errRuntime, expr, "expected a value of type int, got %s", runtimeType(obj))
	}
	return n.Value, nil
}

package evaluator

import (
	"fmt"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/typesystem"
)

// execBlock runs a block in a fresh scope.
func (e *Evaluator) execBlock(block *ast.Block) Object {
	e.env.push()
	result := e.execStatements(block.Statements)
	if err := e.env.pop(); err != nil && !isError(result) {
		return e.newError(errInternal, block, "%v", err)
	}
	return result
}

func (e *Evaluator) execIf(stmt *ast.If) Object {
	cond, errObj := e.evalCondition(stmt.Condition)
	if errObj != nil {
		return errObj
	}
	if cond {
		return e.execBlock(stmt.Consequence)
	}
	if stmt.Alternative != nil {
		return e.execBlock(stmt.Alternative)
	}
	return NIL
}

// evalCondition evaluates a condition that the checker typed as bool.
func (e *Evaluator) evalCondition(expr ast.Expression) (bool, *Error) {
	obj := e.evalExpr(expr)
	if errObj, ok := obj.(*Error); ok {
		return false, errObj
	}
	b, ok := obj.(*Boolean)
	if !ok {
		return false, e.newError(errRuntime, expr, "condition must be of type bool, got %s", runtimeType(obj))
	}
	return b.Value, nil
}

func (e *Evaluator) execPrint(stmt *ast.Print) Object {
	val := e.evalExpr(stmt.Value)
	if isError(val) {
		return val
	}
	if _, err := fmt.Fprintln(e.Out, val.Inspect()); err != nil {
		return e.newError(errRuntime, stmt, "print: %v", err)
	}
	return NIL
}

func (e *Evaluator) execReturn(stmt *ast.Return) Object {
	if e.current == nil {
		return e.newError(errReturnOutsideFunction, stmt, "cannot return a value in global scope")
	}
	val := e.evalExpr(stmt.Value)
	if isError(val) {
		return val
	}

	decl := e.current.decl
	actual := runtimeType(val)
	if typesystem.IsAuto(decl.ReturnType) {
		// Fixed once for the declaration; later calls are held to it.
		decl.ReturnType = actual
		e.resolve(decl, actual)
	} else if !typesystem.IsCompatible(decl.ReturnType, actual) {
		return e.newError(errRuntime, stmt, "returning type %s, required %s", actual, decl.ReturnType)
	}
	return &ReturnValue{Value: storeValue(decl.ReturnType, val)}
}

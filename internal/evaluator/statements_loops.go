package evaluator

import (
	"github.com/funvibe/tlang/internal/ast"
)

func (e *Evaluator) execWhile(stmt *ast.While) Object {
	for {
		if errObj := e.checkContext(stmt); errObj != nil {
			return errObj
		}
		cond, errObj := e.evalCondition(stmt.Condition)
		if errObj != nil {
			return errObj
		}
		if !cond {
			return NIL
		}

		result := e.execBlock(stmt.Body)
		switch result.(type) {
		case *ReturnValue, *Error:
			return result
		}
	}
}

// execFor runs init, condition, body and step; the loop variable lives
// in a scope of its own around the body.
func (e *Evaluator) execFor(stmt *ast.For) Object {
	e.env.push()
	result := e.runFor(stmt)
	if err := e.env.pop(); err != nil && !isError(result) {
		return e.newError(errInternal, stmt, "%v", err)
	}
	return result
}

func (e *Evaluator) runFor(stmt *ast.For) Object {
	if stmt.Init != nil {
		if result := e.execVariableDeclaration(stmt.Init); isError(result) {
			return result
		}
	}

	for {
		if errObj := e.checkContext(stmt); errObj != nil {
			return errObj
		}
		cond, errObj := e.evalCondition(stmt.Condition)
		if errObj != nil {
			return errObj
		}
		if !cond {
			return NIL
		}

		result := e.execBlock(stmt.Body)
		switch result.(type) {
		case *ReturnValue, *Error:
			return result
		}

		if stmt.Step != nil {
			if result := e.execAssignment(stmt.Step); isError(result) {
				return result
			}
		}
	}
}

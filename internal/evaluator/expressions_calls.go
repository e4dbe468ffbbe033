package evaluator

import (
	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/symbols"
	"github.com/funvibe/tlang/internal/token"
	"github.com/funvibe/tlang/internal/typesystem"
)

// Call invokes a global function of a program Eval already ran. The
// overload is selected by the runtime types of args.
func (e *Evaluator) Call(name string, args ...Object) Object {
	for _, arg := range args {
		if errObj, ok := arg.(*Error); ok {
			return errObj
		}
	}
	ident := &ast.Identifier{Token: token.Token{Lexeme: name}, Value: name}
	call := &ast.FunctionCall{Token: ident.Token, Name: ident}
	return e.callFunction(call, args, e.globals)
}

func (e *Evaluator) evalFunctionCall(call *ast.FunctionCall) Object {
	args, errObj := e.evalArgs(call.Arguments)
	if errObj != nil {
		return errObj
	}
	return e.callFunction(call, args, e.env)
}

func (e *Evaluator) evalArgs(exprs []ast.Expression) ([]Object, *Error) {
	args := make([]Object, 0, len(exprs))
	for _, expr := range exprs {
		obj := e.evalExpr(expr)
		if errObj, ok := obj.(*Error); ok {
			return nil, errObj
		}
		args = append(args, obj)
	}
	return args, nil
}

// callFunction resolves the overload selected by the runtime argument
// types in owner's function tables and runs it in a new frame over
// owner's root scope.
func (e *Evaluator) callFunction(call *ast.FunctionCall, args []Object, owner *Environment) Object {
	types := make([]typesystem.Type, len(args))
	for i, arg := range args {
		types[i] = runtimeType(arg)
	}
	key := symbols.Mangle(call.Name.Value, types...)
	decl, ok := owner.funcs.LookupSignature(key)
	if !ok {
		return e.newError(errInternal, call, "function %s is not registered", key)
	}
	if len(decl.Parameters) != len(args) {
		return e.newError(errInternal, call, "function %s expects %d arguments, got %d", key, len(decl.Parameters), len(args))
	}

	if e.MaxCallDepth > 0 && e.callDepth >= e.MaxCallDepth {
		return e.newError(errRecursion, call, "maximum call depth %d exceeded calling %s", e.MaxCallDepth, key)
	}

	frame := owner.frame()
	frame.push()
	for i, p := range decl.Parameters {
		if err := frame.vars.Insert(p.Name.Value, p.Type, storeValue(p.Type, args[i])); err != nil {
			return e.newError(errRuntime, p.Name, "parameter %s has already been declared", p.Name.Value)
		}
	}

	tok := call.GetToken()
	prevEnv, prevCurrent := e.env, e.current
	e.env = frame
	e.current = &callContext{decl: decl, key: key}
	e.callDepth++
	e.PushCall(key, e.CurrentFile, tok.Line, tok.Column)
	e.tracef("call %s at %d:%d depth %d", key, tok.Line, tok.Column, e.callDepth)

	result := e.execStatements(decl.Body.Statements)

	e.PopCall()
	e.callDepth--
	e.env, e.current = prevEnv, prevCurrent

	switch r := result.(type) {
	case *Error:
		return r
	case *ReturnValue:
		e.tracef("return %s = %s", key, r.Value.Inspect())
		return r.Value
	}
	return e.newError(errRuntime, call, "function %s finished without returning a value", key)
}

package evaluator

import (
	"fmt"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/typesystem"
)

// Error classes used by the interpreter, mapped to diagnostic codes.
const (
	errRuntime               = diagnostics.ErrR001
	errUninitialized         = diagnostics.ErrR002
	errOutOfBounds           = diagnostics.ErrR003
	errBadArray              = diagnostics.ErrR004
	errDivisionByZero        = diagnostics.ErrR005
	errRecursion             = diagnostics.ErrR006
	errInternal              = diagnostics.ErrI001
	errCancelled             = diagnostics.ErrR001
	errReturnOutsideFunction = diagnostics.ErrR001
)

// newError creates an error located at node carrying the current call stack.
func (e *Evaluator) newError(code diagnostics.ErrorCode, node ast.Node, format string, a ...interface{}) *Error {
	err := &Error{Code: code, Message: fmt.Sprintf(format, a...)}
	if provider, ok := node.(ast.TokenProvider); ok {
		tok := provider.GetToken()
		err.Line = tok.Line
		err.Column = tok.Column
	}

	// Copy stack trace
	if len(e.CallStack) > 0 {
		err.StackTrace = make([]StackFrame, len(e.CallStack))
		for i, frame := range e.CallStack {
			err.StackTrace[i] = StackFrame{
				Name:   frame.Name,
				File:   frame.File,
				Line:   frame.Line,
				Column: frame.Column,
			}
		}
	}
	return err
}

// PushCall adds a call frame to the stack
func (e *Evaluator) PushCall(name string, file string, line, column int) {
	e.CallStack = append(e.CallStack, CallFrame{
		Name:   name,
		File:   file,
		Line:   line,
		Column: column,
	})
}

// PopCall removes the top call frame
func (e *Evaluator) PopCall() {
	if len(e.CallStack) > 0 {
		e.CallStack = e.CallStack[:len(e.CallStack)-1]
	}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// coerce widens an int to float when the destination type is float.
func coerce(target typesystem.Type, obj Object) Object {
	if i, ok := obj.(*Integer); ok && typesystem.IsKind(target, typesystem.KindFloat) {
		return &Float{Value: float64(i.Value)}
	}
	return obj
}

// coerceElements widens every int element of an array stored as float[].
func coerceElements(arr *Array) {
	if !typesystem.IsKind(arr.ElemType, typesystem.KindFloat) {
		return
	}
	for i, el := range arr.Elements {
		if el != nil {
			arr.Elements[i] = coerce(arr.ElemType, el)
		}
	}
}

// storeValue prepares obj for storage under a variable of type target:
// arrays and structs are copied, ints widen to float.
func storeValue(target typesystem.Type, obj Object) Object {
	obj = copyObject(obj)
	if arr, ok := obj.(*Array); ok {
		if t, isArray := target.(typesystem.TArray); isArray && !typesystem.IsAuto(t.Elem) {
			arr.ElemType = t.Elem
		}
		coerceElements(arr)
		return arr
	}
	return coerce(target, obj)
}

func runtimeType(obj Object) typesystem.Type {
	if obj == nil {
		return nil
	}
	return obj.RuntimeType()
}

package evaluator

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/config"
	"github.com/funvibe/tlang/internal/symbols"
	"github.com/funvibe/tlang/internal/typesystem"
)

// CallFrame represents a single frame in the call stack
type CallFrame struct {
	Name   string // Signature key of the callee
	File   string // Source file
	Line   int    // Line of the call site
	Column int    // Column of the call site
}

// callContext is the function currently executing. It is saved and
// restored around every call so an inner call never leaks its return
// type into the caller.
type callContext struct {
	decl *ast.FunctionDeclaration
	key  string
}

type Evaluator struct {
	// Context for cancellation
	Context context.Context

	Out io.Writer

	// MaxCallDepth bounds nested calls; deeper recursion is a runtime fault.
	MaxCallDepth int

	// Trace logs call entry and exit through Logger, tagged with RunID.
	Trace  bool
	Logger *log.Logger
	RunID  string

	// TypeMap records the type each auto slot was bound to at run time.
	TypeMap ast.TypeMap

	// CallStack for stack traces on errors
	CallStack []CallFrame
	// CurrentFile being evaluated
	CurrentFile string

	globals *Environment
	env     *Environment // Active tables
	current *callContext

	// Struct prototypes by name
	structs map[string]*StructInstance
	// Declarations behind auto symbols, resolved on their first write
	slots map[*symbols.Symbol]*ast.VariableDeclaration

	callDepth int
}

func New() *Evaluator {
	globals := NewEnvironment()
	return &Evaluator{
		Out:          os.Stdout,
		MaxCallDepth: config.DefaultMaxCallDepth,
		Logger:       log.New(os.Stderr, "", log.LstdFlags),
		TypeMap:      make(ast.TypeMap),
		CallStack:    make([]CallFrame, 0),
		globals:      globals,
		env:          globals,
		structs:      make(map[string]*StructInstance),
		slots:        make(map[*symbols.Symbol]*ast.VariableDeclaration),
	}
}

// Globals exposes the program's global environment once Eval returned.
func (e *Evaluator) Globals() *Environment {
	return e.globals
}

// Eval runs a program and returns NIL, or the *Error that stopped it.
func (e *Evaluator) Eval(program *ast.Program) Object {
	if program.File != "" && e.CurrentFile == "" {
		e.CurrentFile = program.File
	}
	result := e.execStatements(program.Statements)
	if rv, ok := result.(*ReturnValue); ok {
		return e.newError(errReturnOutsideFunction, nil, "cannot return a value in global scope: %s", rv.Inspect())
	}
	return result
}

// execStatements runs statements in the active scope until one of them
// returns or fails.
func (e *Evaluator) execStatements(stmts []ast.Statement) Object {
	for _, stmt := range stmts {
		if errObj := e.checkContext(stmt); errObj != nil {
			return errObj
		}

		result := e.execStatement(stmt)
		switch result.(type) {
		case *ReturnValue, *Error:
			return result
		}
	}
	return NIL
}

// checkContext reports cancellation of the evaluation context.
func (e *Evaluator) checkContext(node ast.Node) *Error {
	if e.Context == nil {
		return nil
	}
	select {
	case <-e.Context.Done():
		return e.newError(errCancelled, node, "execution cancelled: %v", e.Context.Err())
	default:
		return nil
	}
}

func (e *Evaluator) execStatement(stmt ast.Statement) Object {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return e.execVariableDeclaration(s)
	case *ast.Assignment:
		return e.execAssignment(s)
	case *ast.Block:
		return e.execBlock(s)
	case *ast.If:
		return e.execIf(s)
	case *ast.While:
		return e.execWhile(s)
	case *ast.For:
		return e.execFor(s)
	case *ast.Print:
		return e.execPrint(s)
	case *ast.Return:
		return e.execReturn(s)
	case *ast.FunctionDeclaration:
		return e.execFunctionDeclaration(s)
	case *ast.Struct:
		return e.execStruct(s)
	}
	return e.newError(errInternal, stmt, "unknown statement %T", stmt)
}

func (e *Evaluator) evalExpr(expr ast.Expression) Object {
	switch ex := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(ex)
	case *ast.Identifier:
		return e.evalIdentifier(ex)
	case *ast.ArrayIndexIdentifier:
		return e.evalIndex(ex)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(ex)
	case *ast.BinaryOperator:
		return e.evalBinary(ex)
	case *ast.UnaryOperator:
		return e.evalUnary(ex)
	case *ast.FunctionCall:
		return e.evalFunctionCall(ex)
	case *ast.StructVariableSelector:
		return e.evalMember(ex)
	case *ast.StructFunctionSelector:
		return e.evalMethodCall(ex)
	}
	return e.newError(errInternal, expr, "unknown expression %T", expr)
}

// resolve records the run-time type of an auto slot.
func (e *Evaluator) resolve(node ast.Node, t typesystem.Type) {
	e.TypeMap[node] = t
}

// bindSymbol fixes the type of an auto variable on its first write.
func (e *Evaluator) bindSymbol(name string, t typesystem.Type) {
	if err := e.env.vars.SetType(name, t); err != nil {
		return
	}
	sym, _ := e.env.vars.Lookup(name)
	if decl, ok := e.slots[sym]; ok {
		e.resolve(decl, t)
		delete(e.slots, sym)
	}
}

func (e *Evaluator) tracef(format string, args ...interface{}) {
	if !e.Trace || e.Logger == nil {
		return
	}
	e.Logger.Printf("[%s] "+format, append([]interface{}{e.RunID}, args...)...)
}

package analyzer

import (
	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/symbols"
	"github.com/funvibe/tlang/internal/typesystem"
)

// Analyzer performs semantic analysis on the AST.
//
// Checking is fail-fast: the first violation ends the pass. Auto types are
// resolved in place on the AST, and every resolution is recorded in TypeMap.
type Analyzer struct {
	File    string      // Used in diagnostics
	TypeMap ast.TypeMap // Resolved auto slots
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{TypeMap: make(ast.TypeMap)}
}

// Analyze checks the program and returns at most one diagnostic.
func (a *Analyzer) Analyze(program *ast.Program) []*diagnostics.DiagnosticError {
	if a.TypeMap == nil {
		a.TypeMap = make(ast.TypeMap)
	}
	file := a.File
	if file == "" {
		file = program.File
	}

	w := newWalker(a.TypeMap)
	if err := w.checkProgram(program); err != nil {
		if err.File == "" {
			err.File = file
		}
		return []*diagnostics.DiagnosticError{err}
	}
	return nil
}

// structInfo is the checker's view of a declared struct: its own tables,
// built once while checking the declaration.
type structInfo struct {
	decl      *ast.Struct
	variables *symbols.VariableTable
	functions *symbols.FunctionTable
}

// funcContext describes the function whose body is being checked.
type funcContext struct {
	decl *ast.FunctionDeclaration
	key  string
}

type walker struct {
	variables *symbols.VariableTable
	functions *symbols.FunctionTable

	// Enclosing function, nil at top level and in struct bodies.
	current *funcContext
	// Set while the members of a struct are checked.
	inStruct bool

	structs map[string]*structInfo

	// Declarations behind auto symbols, so a first write can be recorded.
	slots   map[*symbols.Symbol]*ast.VariableDeclaration
	typeMap ast.TypeMap
}

func newWalker(typeMap ast.TypeMap) *walker {
	return &walker{
		variables: symbols.NewVariableTable(),
		functions: symbols.NewFunctionTable(),
		structs:   make(map[string]*structInfo),
		slots:     make(map[*symbols.Symbol]*ast.VariableDeclaration),
		typeMap:   typeMap,
	}
}

func (w *walker) checkProgram(program *ast.Program) *diagnostics.DiagnosticError {
	w.variables.PushScope()
	w.functions.PushScope()

	for _, stmt := range program.Statements {
		if _, err := w.checkStatement(stmt); err != nil {
			return err
		}
	}

	if err := w.popScopes(program.Statements); err != nil {
		return err
	}
	return nil
}

// popScopes closes one variable and one function scope. Failure is an
// internal fault: every pop is paired with a push.
func (w *walker) popScopes(at []ast.Statement) *diagnostics.DiagnosticError {
	errV := w.variables.PopScope()
	errF := w.functions.PopScope()
	if errV != nil || errF != nil {
		var node ast.Statement
		if len(at) > 0 {
			node = at[0]
		}
		return internalError(node, "scope stack underflow")
	}
	return nil
}

// withStruct runs fn with the active tables swapped to the struct's own.
func (w *walker) withStruct(info *structInfo, fn func() *diagnostics.DiagnosticError) *diagnostics.DiagnosticError {
	oldVars, oldFuncs := w.variables, w.functions
	w.variables, w.functions = info.variables, info.functions
	defer func() {
		w.variables, w.functions = oldVars, oldFuncs
	}()
	return fn()
}

// resolve records the type an auto slot was bound to.
func (w *walker) resolve(node ast.Node, t typesystem.Type) {
	w.typeMap[node] = t
}

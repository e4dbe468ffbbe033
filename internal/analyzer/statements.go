package analyzer

import (
	"errors"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/symbols"
	"github.com/funvibe/tlang/internal/typesystem"
)

// checkStatement checks one statement and reports whether it definitely
// returns from the enclosing function.
func (w *walker) checkStatement(stmt ast.Statement) (bool, *diagnostics.DiagnosticError) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return false, w.checkVariableDeclaration(s)
	case *ast.Assignment:
		return false, w.checkAssignment(s)
	case *ast.Block:
		return w.checkBlock(s)
	case *ast.If:
		return w.checkIf(s)
	case *ast.While:
		return false, w.checkWhile(s)
	case *ast.For:
		return false, w.checkFor(s)
	case *ast.Print:
		_, err := w.inferExpr(s.Value)
		return false, err
	case *ast.Return:
		return true, w.checkReturn(s)
	case *ast.FunctionDeclaration:
		return false, w.checkFunctionDeclaration(s)
	case *ast.Struct:
		return false, w.checkStruct(s)
	}
	return false, internalError(stmt, "unknown statement %T", stmt)
}

// checkStatements checks a statement list in the current scope. Anything
// after a statement that returns is unreachable.
func (w *walker) checkStatements(stmts []ast.Statement) (bool, *diagnostics.DiagnosticError) {
	returned := false
	for _, stmt := range stmts {
		if returned {
			return false, newError(diagnostics.ErrA005, stmt, "unreachable statement")
		}
		r, err := w.checkStatement(stmt)
		if err != nil {
			return false, err
		}
		returned = r
	}
	return returned, nil
}

func (w *walker) checkBlock(block *ast.Block) (bool, *diagnostics.DiagnosticError) {
	for _, stmt := range block.Statements {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok {
			return false, newError(diagnostics.ErrA007, fn, "cannot nest functions: %s is declared inside a block", fn.Name.Value)
		}
	}

	w.variables.PushScope()
	w.functions.PushScope()
	returned, err := w.checkStatements(block.Statements)
	if err != nil {
		return false, err
	}
	if err := w.popScopes(block.Statements); err != nil {
		return false, err
	}
	return returned, nil
}

func (w *walker) checkIf(stmt *ast.If) (bool, *diagnostics.DiagnosticError) {
	cond, err := w.inferExpr(stmt.Condition)
	if err != nil {
		return false, err
	}
	if err := requireBool(stmt.Condition, cond); err != nil {
		return false, err
	}

	thenReturned, err := w.checkBlock(stmt.Consequence)
	if err != nil {
		return false, err
	}
	if stmt.Alternative == nil {
		return false, nil
	}
	elseReturned, err := w.checkBlock(stmt.Alternative)
	if err != nil {
		return false, err
	}
	return thenReturned && elseReturned, nil
}

// Loops never count as returning: the body may run zero times.
func (w *walker) checkWhile(stmt *ast.While) *diagnostics.DiagnosticError {
	cond, err := w.inferExpr(stmt.Condition)
	if err != nil {
		return err
	}
	if err := requireBool(stmt.Condition, cond); err != nil {
		return err
	}
	_, err = w.checkBlock(stmt.Body)
	return err
}

func (w *walker) checkFor(stmt *ast.For) *diagnostics.DiagnosticError {
	w.variables.PushScope()
	w.functions.PushScope()

	if stmt.Init != nil {
		if err := w.checkVariableDeclaration(stmt.Init); err != nil {
			return err
		}
	}
	cond, err := w.inferExpr(stmt.Condition)
	if err != nil {
		return err
	}
	if err := requireBool(stmt.Condition, cond); err != nil {
		return err
	}
	if stmt.Step != nil {
		if err := w.checkAssignment(stmt.Step); err != nil {
			return err
		}
	}
	if _, err := w.checkBlock(stmt.Body); err != nil {
		return err
	}
	return w.popScopes([]ast.Statement{stmt})
}

func (w *walker) checkReturn(stmt *ast.Return) *diagnostics.DiagnosticError {
	if w.current == nil {
		return newError(diagnostics.ErrA007, stmt, "cannot return a value in global scope")
	}
	actual, err := w.inferExpr(stmt.Value)
	if err != nil {
		return err
	}

	decl := w.current.decl
	if typesystem.IsAuto(decl.ReturnType) {
		if typesystem.ContainsAuto(actual) {
			return newError(diagnostics.ErrA003, stmt, "cannot infer return type of %s from a value of type %s", decl.Name.Value, actual)
		}
		// The first return fixes the type for every later return and call.
		decl.ReturnType = actual
		w.resolve(decl, actual)
		return nil
	}

	if !typesystem.IsCompatible(decl.ReturnType, actual) {
		return newError(diagnostics.ErrA003, stmt, "returning type %s, required %s", actual, decl.ReturnType)
	}
	return nil
}

func (w *walker) checkFunctionDeclaration(decl *ast.FunctionDeclaration) *diagnostics.DiagnosticError {
	if w.current != nil {
		return newError(diagnostics.ErrA007, decl, "cannot nest functions: %s is declared inside %s", decl.Name.Value, w.current.decl.Name.Value)
	}
	for _, p := range decl.Parameters {
		if typesystem.ContainsAuto(p.Type) {
			return newError(diagnostics.ErrA007, p.Name, "parameter %s cannot be of type auto", p.Name.Value)
		}
	}

	key := symbols.SignatureKey(decl)
	if err := w.functions.Register(key, decl); err != nil {
		if errors.Is(err, symbols.ErrDuplicate) {
			return newError(diagnostics.ErrA004, decl, "function %s has already been defined", key)
		}
		return internalError(decl, "registering %s: %v", key, err)
	}

	w.variables.PushScope()
	for _, p := range decl.Parameters {
		if err := w.variables.Insert(p.Name.Value, p.Type, nil); err != nil {
			return newError(diagnostics.ErrA004, p.Name, "parameter %s has already been declared", p.Name.Value)
		}
	}

	prevInStruct := w.inStruct
	w.current = &funcContext{decl: decl, key: key}
	w.inStruct = false
	defer func() {
		w.current = nil
		w.inStruct = prevInStruct
	}()

	returned, err := w.checkStatements(decl.Body.Statements)
	if err != nil {
		return err
	}
	if !returned {
		return newError(diagnostics.ErrA006, decl, "function %s must return a value", decl.Name.Value)
	}

	if err := w.variables.PopScope(); err != nil {
		return internalError(decl, "scope stack underflow")
	}
	return nil
}

func (w *walker) checkStruct(s *ast.Struct) *diagnostics.DiagnosticError {
	name := s.Name.Value
	if _, dup := w.structs[name]; dup {
		return newError(diagnostics.ErrA004, s, "duplicate struct %s", name)
	}

	info := &structInfo{
		decl:      s,
		variables: symbols.NewVariableTable(),
		functions: symbols.NewFunctionTable(),
	}
	info.variables.PushScope()
	info.functions.PushScope()

	prevInStruct := w.inStruct
	w.inStruct = true
	err := w.withStruct(info, func() *diagnostics.DiagnosticError {
		for _, member := range s.Members {
			if _, err := w.checkStatement(member); err != nil {
				return err
			}
		}
		return nil
	})
	w.inStruct = prevInStruct
	if err != nil {
		return err
	}

	w.structs[name] = info
	return nil
}

func (w *walker) checkVariableDeclaration(decl *ast.VariableDeclaration) *diagnostics.DiagnosticError {
	name := decl.Name.Value
	if w.inStruct && typesystem.ContainsAuto(decl.Type) {
		return newError(diagnostics.ErrA007, decl, "cannot use auto type for variable declarations in structs (%s)", name)
	}

	if decl.Size != nil {
		sizeType, err := w.inferExpr(decl.Size)
		if err != nil {
			return err
		}
		if !typesystem.IsKind(sizeType, typesystem.KindInt) {
			return newError(diagnostics.ErrA003, decl.Size, "array size can only be of type int, got %s", sizeType)
		}
	}
	if err := w.requireKnownType(decl, decl.Type); err != nil {
		return err
	}
	if _, exists := w.variables.LookupCurrent(name); exists {
		return newError(diagnostics.ErrA004, decl.Name, "variable %s has already been declared", name)
	}

	if decl.Value != nil {
		actual, err := w.inferExpr(decl.Value)
		if err != nil {
			return err
		}
		if err := w.bindDeclaration(decl, actual); err != nil {
			return err
		}
	}

	if err := w.variables.Insert(name, decl.Type, nil); err != nil {
		return internalError(decl, "declaring %s: %v", name, err)
	}
	if typesystem.ContainsAuto(decl.Type) {
		sym, _ := w.variables.LookupCurrent(name)
		w.slots[sym] = decl
	}
	return nil
}

// bindDeclaration checks an initializer against the declared type and
// resolves an auto declaration from it.
func (w *walker) bindDeclaration(decl *ast.VariableDeclaration, actual typesystem.Type) *diagnostics.DiagnosticError {
	declared := decl.Type

	if arr, ok := declared.(typesystem.TArray); ok {
		init, isArray := actual.(typesystem.TArray)
		if !isArray {
			return typeMismatch(decl.Value, declared, actual)
		}
		if typesystem.IsAuto(arr.Elem) {
			decl.Type = typesystem.TArray{Elem: init.Elem, Size: arr.Size}
			w.resolve(decl, decl.Type)
			return nil
		}
		// Initializer elements widen individually, so an int literal
		// list may initialize a float array.
		if !typesystem.IsCompatible(arr.Elem, init.Elem) {
			return typeMismatch(decl.Value, declared, actual)
		}
		return nil
	}

	if typesystem.IsAuto(declared) {
		if typesystem.ContainsAuto(actual) {
			return newError(diagnostics.ErrA003, decl.Value, "cannot infer type of %s from a value of type %s", decl.Name.Value, actual)
		}
		decl.Type = actual
		w.resolve(decl, actual)
		return nil
	}

	if !typesystem.IsCompatible(declared, actual) {
		return typeMismatch(decl.Value, declared, actual)
	}
	return nil
}

// requireKnownType rejects references to structs that were never declared.
func (w *walker) requireKnownType(node ast.Node, t typesystem.Type) *diagnostics.DiagnosticError {
	switch tt := t.(type) {
	case typesystem.TStruct:
		if _, ok := w.structs[tt.Name]; !ok {
			return newError(diagnostics.ErrA002, node, "cannot resolve struct type %s", tt.Name)
		}
	case typesystem.TArray:
		if tt.Elem != nil {
			return w.requireKnownType(node, tt.Elem)
		}
	}
	return nil
}

func (w *walker) checkAssignment(stmt *ast.Assignment) *diagnostics.DiagnosticError {
	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		name := target.TargetName()
		sym, ok := w.variables.Lookup(name)
		if !ok {
			return newError(diagnostics.ErrA001, target, "cannot resolve identifier %s", name)
		}
		actual, err := w.inferExpr(stmt.Value)
		if err != nil {
			return err
		}

		switch declared := sym.Type.(type) {
		case typesystem.TAuto:
			if typesystem.ContainsAuto(actual) {
				return newError(diagnostics.ErrA003, stmt.Value, "cannot infer type of %s from a value of type %s", target.Value, actual)
			}
			w.bindSymbol(name, actual)
			return nil
		case typesystem.TArray:
			if init, isArray := actual.(typesystem.TArray); isArray && typesystem.IsAuto(declared.Elem) {
				w.bindSymbol(name, typesystem.TArray{Elem: init.Elem, Size: declared.Size})
				return nil
			}
		}
		if !typesystem.IsCompatible(sym.Type, actual) {
			return typeMismatch(stmt.Value, sym.Type, actual)
		}
		return nil

	case *ast.ArrayIndexIdentifier:
		if _, err := w.inferExpr(target); err != nil {
			return err
		}
		name := target.TargetName()
		sym, _ := w.variables.Lookup(name)
		arr := sym.Type.(typesystem.TArray)
		actual, err := w.inferExpr(stmt.Value)
		if err != nil {
			return err
		}
		if typesystem.IsAuto(arr.Elem) {
			if typesystem.ContainsAuto(actual) {
				return newError(diagnostics.ErrA003, stmt.Value, "cannot infer element type of %s from a value of type %s", target.Name.Value, actual)
			}
			w.bindSymbol(name, typesystem.TArray{Elem: actual, Size: arr.Size})
			return nil
		}
		if !typesystem.IsCompatible(arr.Elem, actual) {
			return typeMismatch(stmt.Value, arr.Elem, actual)
		}
		return nil

	case *ast.StructVariableSelector:
		member, err := w.inferExpr(target)
		if err != nil {
			return err
		}
		actual, err := w.inferExpr(stmt.Value)
		if err != nil {
			return err
		}
		if !typesystem.IsCompatible(member, actual) {
			return typeMismatch(stmt.Value, member, actual)
		}
		return nil
	}
	return internalError(stmt, "unknown assignment target %T", stmt.Target)
}

// bindSymbol fixes an auto symbol on its first write.
func (w *walker) bindSymbol(name string, t typesystem.Type) {
	if err := w.variables.SetType(name, t); err != nil {
		return
	}
	sym, _ := w.variables.Lookup(name)
	if decl, ok := w.slots[sym]; ok {
		w.resolve(decl, t)
		delete(w.slots, sym)
	}
}

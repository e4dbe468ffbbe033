package evaluator

import (
	"errors"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/symbols"
	"github.com/funvibe/tlang/internal/typesystem"
)

func (e *Evaluator) execVariableDeclaration(decl *ast.VariableDeclaration) Object {
	if decl.IsArray() {
		return e.declareArray(decl)
	}

	var value Object
	if decl.Value != nil {
		value = e.evalExpr(decl.Value)
		if isError(value) {
			return value
		}
	}

	typ := decl.Type
	switch t := typ.(type) {
	case typesystem.TStruct:
		proto, errObj := e.prototype(decl, t.Name)
		if errObj != nil {
			return errObj
		}
		if value == nil {
			value = proto.Copy().(Object)
		} else {
			value = copyObject(value)
		}
	case typesystem.TAuto:
		if value != nil {
			typ = runtimeType(value)
			e.resolve(decl, typ)
			value = copyObject(value)
		}
	default:
		if value != nil {
			value = storeValue(typ, value)
		}
	}
	return e.declare(decl, typ, value)
}

// declareArray allocates an array variable: from its initializer when it
// has one, otherwise with empty slots. Struct slots start as default
// instances.
func (e *Evaluator) declareArray(decl *ast.VariableDeclaration) Object {
	size, errObj := e.evalInt(decl.Size)
	if errObj != nil {
		return errObj
	}
	if size < 0 {
		return e.newError(errBadArray, decl.Size, "array size cannot be negative: %d", size)
	}

	elem := typesystem.Auto
	if t, ok := decl.Type.(typesystem.TArray); ok && t.Elem != nil {
		elem = t.Elem
	}

	var arr *Array
	if decl.Value != nil {
		value := e.evalExpr(decl.Value)
		if isError(value) {
			return value
		}
		init, ok := value.(*Array)
		if !ok {
			return e.newError(errRuntime, decl.Value, "cannot initialize array %s with a value of type %s", decl.Name.Value, runtimeType(value))
		}
		if int64(len(init.Elements)) != size {
			return e.newError(errBadArray, decl.Value, "array %s has size %d, initializer has %d elements", decl.Name.Value, size, len(init.Elements))
		}
		arr = init.Copy().(*Array)
		if typesystem.IsAuto(elem) {
			elem = arr.ElemType
			e.resolve(decl, typesystem.TArray{Elem: elem, Size: int(size)})
		}
		arr.ElemType = elem
		coerceElements(arr)
	} else {
		arr = &Array{ElemType: elem, Elements: make([]Object, size)}
		if ref, ok := elem.(typesystem.TStruct); ok {
			proto, errObj := e.prototype(decl, ref.Name)
			if errObj != nil {
				return errObj
			}
			for i := range arr.Elements {
				arr.Elements[i] = proto.Copy().(Object)
			}
		}
	}
	return e.declare(decl, typesystem.TArray{Elem: elem, Size: int(size)}, arr)
}

// declare inserts the variable into the current scope. An auto symbol is
// remembered so its first write can be recorded.
func (e *Evaluator) declare(decl *ast.VariableDeclaration, typ typesystem.Type, value Object) Object {
	name := decl.Name.Value
	var stored symbols.Value
	if value != nil {
		stored = value
	}
	if err := e.env.vars.Insert(name, typ, stored); err != nil {
		if errors.Is(err, symbols.ErrDuplicate) {
			return e.newError(errRuntime, decl.Name, "variable %s has already been declared", name)
		}
		return e.newError(errInternal, decl, "declaring %s: %v", name, err)
	}
	if typesystem.ContainsAuto(typ) {
		sym, _ := e.env.vars.LookupCurrent(name)
		e.slots[sym] = decl
	}
	return NIL
}

func (e *Evaluator) prototype(node ast.Node, name string) (*StructInstance, *Error) {
	proto, ok := e.structs[name]
	if !ok {
		return nil, e.newError(errRuntime, node, "cannot resolve struct type %s", name)
	}
	return proto, nil
}

func (e *Evaluator) execAssignment(stmt *ast.Assignment) Object {
	value := e.evalExpr(stmt.Value)
	if isError(value) {
		return value
	}

	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		name := target.TargetName()
		sym, ok := e.env.vars.Lookup(name)
		if !ok {
			return e.newError(errRuntime, target, "cannot resolve identifier %s", name)
		}
		switch declared := sym.Type.(type) {
		case typesystem.TAuto:
			e.bindSymbol(name, runtimeType(value))
			return e.setValue(e.env.vars, target, name, copyObject(value))
		case typesystem.TArray:
			if errObj := e.checkArraySize(stmt.Value, name, sym.Value, value); errObj != nil {
				return errObj
			}
			if arr, isArray := value.(*Array); isArray && typesystem.IsAuto(declared.Elem) {
				e.bindSymbol(name, typesystem.TArray{Elem: arr.ElemType, Size: declared.Size})
			}
		}
		return e.setValue(e.env.vars, target, name, storeValue(sym.Type, value))

	case *ast.ArrayIndexIdentifier:
		name := target.TargetName()
		sym, arr, errObj := e.arrayOf(target.Name)
		if errObj != nil {
			return errObj
		}
		i, errObj := e.indexOf(target, arr)
		if errObj != nil {
			return errObj
		}
		if typesystem.IsAuto(arr.ElemType) {
			arr.ElemType = runtimeType(value)
			if t, ok := sym.Type.(typesystem.TArray); ok {
				e.bindSymbol(name, typesystem.TArray{Elem: arr.ElemType, Size: t.Size})
			}
		}
		arr.Elements[i] = storeValue(arr.ElemType, value)
		return NIL

	case *ast.StructVariableSelector:
		inst, errObj := e.instanceOf(target.Base)
		if errObj != nil {
			return errObj
		}
		member, ok := inst.Env.vars.Lookup(target.Member.Value)
		if !ok {
			return e.newError(errRuntime, target.Member, "struct %s has no member %s", inst.TypeName, target.Member.Value)
		}
		if _, isArray := member.Type.(typesystem.TArray); isArray {
			path := target.TargetName() + "." + member.Name
			if errObj := e.checkArraySize(stmt.Value, path, member.Value, value); errObj != nil {
				return errObj
			}
		}
		return e.setValue(inst.Env.vars, target.Member, member.Name, storeValue(member.Type, value))
	}
	return e.newError(errInternal, stmt, "unknown assignment target %T", stmt.Target)
}

// checkArraySize rejects storing an array of a different length into an
// array variable: arrays keep the size they were declared with.
func (e *Evaluator) checkArraySize(node ast.Node, name string, current symbols.Value, value Object) *Error {
	cur, ok := current.(*Array)
	if !ok {
		return nil
	}
	arr, ok := value.(*Array)
	if !ok || len(arr.Elements) == len(cur.Elements) {
		return nil
	}
	return e.newError(errBadArray, node, "array %s has size %d, assigned value has %d elements", name, len(cur.Elements), len(arr.Elements))
}

func (e *Evaluator) setValue(vars *symbols.VariableTable, node ast.Node, name string, value Object) Object {
	if err := vars.SetValue(name, value); err != nil {
		return e.newError(errInternal, node, "assigning %s: %v", name, err)
	}
	return NIL
}

func (e *Evaluator) execFunctionDeclaration(decl *ast.FunctionDeclaration) Object {
	key := symbols.SignatureKey(decl)
	if err := e.env.funcs.Register(key, decl); err != nil {
		if errors.Is(err, symbols.ErrDuplicate) {
			return e.newError(errRuntime, decl, "function %s has already been defined", key)
		}
		return e.newError(errInternal, decl, "registering %s: %v", key, err)
	}
	return NIL
}

// execStruct runs the member declarations against a fresh environment,
// which becomes the prototype every instance is copied from. Running the
// same declaration again (loop body, repeated call) rebuilds its prototype.
func (e *Evaluator) execStruct(s *ast.Struct) Object {
	name := s.Name.Value
	if prev, dup := e.structs[name]; dup && prev.Decl != s {
		return e.newError(errRuntime, s, "duplicate struct %s", name)
	}

	proto := &StructInstance{TypeName: name, Env: NewEnvironment(), Decl: s}
	prevEnv, prevCurrent := e.env, e.current
	e.env, e.current = proto.Env, nil
	defer func() {
		e.env, e.current = prevEnv, prevCurrent
	}()

	for _, member := range s.Members {
		if result := e.execStatement(member); isError(result) {
			return result
		}
	}
	proto.Fields = proto.Env.vars.Names()

	e.structs[name] = proto
	return NIL
}

package evaluator

import (
	"strings"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/symbols"
	"github.com/funvibe/tlang/internal/typesystem"
)

// unsetText renders array slots and struct members that were never assigned.
const unsetText = "<unset>"

// Array is a fixed-size array. A nil element is a slot that was never written.
type Array struct {
	ElemType typesystem.Type
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, el := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		if el == nil {
			out.WriteString(unsetText)
			continue
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}
func (a *Array) RuntimeType() typesystem.Type {
	return typesystem.TArray{Elem: a.ElemType, Size: len(a.Elements)}
}

// Copy duplicates the array and every struct instance stored in it.
func (a *Array) Copy() symbols.Value {
	elems := make([]Object, len(a.Elements))
	for i, el := range a.Elements {
		elems[i] = copyObject(el)
	}
	return &Array{ElemType: a.ElemType, Elements: elems}
}

// StructInstance is a struct value: an environment of its own, seeded
// from the struct declaration's prototype.
type StructInstance struct {
	TypeName string
	Env      *Environment
	Fields   []string    // Member variables in declaration order
	Decl     *ast.Struct // Declaration the prototype was built from
}

func (s *StructInstance) Type() ObjectType { return STRUCT_OBJ }
func (s *StructInstance) Inspect() string {
	var out strings.Builder
	out.WriteString(s.TypeName)
	out.WriteString("{")
	for i, name := range s.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(name)
		out.WriteString("=")
		if sym, ok := s.Env.vars.Lookup(name); ok && sym.HasValue() {
			out.WriteString(sym.Value.Inspect())
		} else {
			out.WriteString(unsetText)
		}
	}
	out.WriteString("}")
	return out.String()
}
func (s *StructInstance) RuntimeType() typesystem.Type {
	return typesystem.TStruct{Name: s.TypeName}
}

// Copy returns an independent instance: mutating one never affects the other.
func (s *StructInstance) Copy() symbols.Value {
	return &StructInstance{TypeName: s.TypeName, Env: s.Env.Clone(), Fields: s.Fields, Decl: s.Decl}
}

// copyObject gives arrays and struct instances value semantics on store.
func copyObject(obj Object) Object {
	if obj == nil {
		return nil
	}
	if c, ok := obj.(symbols.Copier); ok {
		return c.Copy().(Object)
	}
	return obj
}

// Package symbols implements the scoped tables shared by the checker and
// the interpreter.
//
//   - symbol_table_core.go: Symbol, stored values, errors, signature keys
//   - symbol_table.go: VariableTable (scope stack of typed variables)
//   - function_table.go: FunctionTable (scope stack of overloaded functions)
package symbols

import "github.com/funvibe/tlang/internal/typesystem"

// VariableTable is a stack of scopes mapping names to symbols.
// The innermost scope is last.
type VariableTable struct {
	scopes []map[string]*Symbol
}

// NewVariableTable returns a table with no scopes. Callers push the
// global scope themselves.
func NewVariableTable() *VariableTable {
	return &VariableTable{}
}

// PushScope opens a new innermost scope.
func (t *VariableTable) PushScope() {
	t.scopes = append(t.scopes, make(map[string]*Symbol))
}

// PopScope discards the innermost scope with everything declared in it.
func (t *VariableTable) PopScope() error {
	if len(t.scopes) == 0 {
		return ErrNoScope
	}
	t.scopes[len(t.scopes)-1] = nil
	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

// Depth returns the number of open scopes.
func (t *VariableTable) Depth() int {
	return len(t.scopes)
}

// Insert declares name in the innermost scope. Value may be nil.
func (t *VariableTable) Insert(name string, typ typesystem.Type, value Value) error {
	if len(t.scopes) == 0 {
		return ErrNoScope
	}
	scope := t.scopes[len(t.scopes)-1]
	if _, exists := scope[name]; exists {
		return ErrDuplicate
	}
	scope[name] = &Symbol{Name: name, Type: typ, Value: value, seq: symbolSeq.Add(1)}
	return nil
}

// Lookup finds the innermost symbol called name.
func (t *VariableTable) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupCurrent searches only the innermost scope.
func (t *VariableTable) LookupCurrent(name string) (*Symbol, bool) {
	if len(t.scopes) == 0 {
		return nil, false
	}
	sym, ok := t.scopes[len(t.scopes)-1][name]
	return sym, ok
}

// SetValue replaces the value of the innermost symbol called name.
func (t *VariableTable) SetValue(name string, value Value) error {
	sym, ok := t.Lookup(name)
	if !ok {
		return ErrNotFound
	}
	sym.Value = value
	return nil
}

// SetType rebinds the type of the innermost symbol called name.
// Used when an auto declaration is resolved by its first write.
func (t *VariableTable) SetType(name string, typ typesystem.Type) error {
	sym, ok := t.Lookup(name)
	if !ok {
		return ErrNotFound
	}
	sym.Type = typ
	return nil
}

// Names returns the names declared in the innermost scope in declaration order.
func (t *VariableTable) Names() []string {
	if len(t.scopes) == 0 {
		return nil
	}
	scope := t.scopes[len(t.scopes)-1]
	names := make([]string, 0, len(scope))
	for name := range scope {
		names = append(names, name)
	}
	sortBySeq(names, scope)
	return names
}

// Clone returns a deep copy. Values implementing Copier are copied, so
// the clone shares no mutable state with t.
func (t *VariableTable) Clone() *VariableTable {
	clone := &VariableTable{scopes: make([]map[string]*Symbol, len(t.scopes))}
	for i, scope := range t.scopes {
		copied := make(map[string]*Symbol, len(scope))
		for name, sym := range scope {
			copied[name] = sym.clone()
		}
		clone.scopes[i] = copied
	}
	return clone
}

// Base returns a table sharing the outermost n scopes with t. Symbols in
// those scopes are visible and writable through both tables; scopes pushed
// later on either table are private to it. Function calls use it to run a
// body against the global (or struct) scope without the caller's locals.
func (t *VariableTable) Base(n int) *VariableTable {
	if n > len(t.scopes) {
		n = len(t.scopes)
	}
	scopes := make([]map[string]*Symbol, n, n+4)
	copy(scopes, t.scopes[:n])
	return &VariableTable{scopes: scopes}
}

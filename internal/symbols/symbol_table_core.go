package symbols

import (
	"errors"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/funvibe/tlang/internal/typesystem"
)

var (
	// ErrNoScope is returned when a table operation needs a scope and none is open.
	ErrNoScope = errors.New("no scope to pop")
	// ErrDuplicate is returned when a name or signature already exists in the innermost scope.
	ErrDuplicate = errors.New("already defined in this scope")
	// ErrNotFound is returned when updating a name that is not declared.
	ErrNotFound = errors.New("not declared")
)

// Value is anything the interpreter stores in a table.
type Value interface {
	Inspect() string
}

// Copier is implemented by values with reference identity (arrays, struct
// instances) that must be duplicated when a table is cloned.
type Copier interface {
	Copy() Value
}

// CopyValue duplicates v when it is a Copier and returns it unchanged otherwise.
func CopyValue(v Value) Value {
	if v == nil {
		return nil
	}
	if c, ok := v.(Copier); ok {
		return c.Copy()
	}
	return v
}

// Symbol is a table entry: the declared type and the current value, if any.
type Symbol struct {
	Name  string
	Type  typesystem.Type
	Value Value

	seq uint64
}

var symbolSeq atomic.Uint64

func (s *Symbol) clone() *Symbol {
	return &Symbol{Name: s.Name, Type: s.Type, Value: CopyValue(s.Value), seq: s.seq}
}

// HasValue reports whether the symbol was ever assigned.
func (s *Symbol) HasValue() bool {
	return s.Value != nil
}

func sortBySeq(names []string, scope map[string]*Symbol) {
	sort.Slice(names, func(i, j int) bool {
		return scope[names[i]].seq < scope[names[j]].seq
	})
}

// Mangle builds the signature key of a function: its name followed by the
// lexical form of each parameter type, in order. add(int, float) -> "add(int,float)".
func Mangle(name string, paramTypes ...typesystem.Type) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, t := range paramTypes {
		if i > 0 {
			sb.WriteByte(',')
		}
		if t == nil {
			sb.WriteString("?")
			continue
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

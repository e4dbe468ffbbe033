package evaluator

import (
	"github.com/funvibe/tlang/internal/typesystem"
)

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *Boolean) RuntimeType() typesystem.Type { return typesystem.Bool }

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// Integer
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType             { return INTEGER_OBJ }
func (i *Integer) Inspect() string              { return formatInt(i.Value) }
func (i *Integer) RuntimeType() typesystem.Type { return typesystem.Int }

// Float
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType             { return FLOAT_OBJ }
func (f *Float) Inspect() string              { return formatFloat(f.Value) }
func (f *Float) RuntimeType() typesystem.Type { return typesystem.Float }

// String
type String struct {
	Value string
}

func (s *String) Type() ObjectType             { return STRING_OBJ }
func (s *String) Inspect() string              { return s.Value }
func (s *String) RuntimeType() typesystem.Type { return typesystem.String }

// Char represents a character.
type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType             { return CHAR_OBJ }
func (c *Char) Inspect() string              { return string(c.Value) }
func (c *Char) RuntimeType() typesystem.Type { return typesystem.Char }

// Nil is the result of statements that complete normally.
type Nil struct{}

func (n *Nil) Type() ObjectType             { return NIL_OBJ }
func (n *Nil) Inspect() string              { return "Nil" }
func (n *Nil) RuntimeType() typesystem.Type { return nil }

var NIL = &Nil{}

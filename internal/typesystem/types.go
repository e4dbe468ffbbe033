package typesystem

import (
	"strings"

	"github.com/funvibe/tlang/internal/config"
)

// Type is the interface for all types in our system.
// The set of implementations is closed: TPrimitive, TAuto, TArray, TStruct.
type Type interface {
	// String returns the lexical form used in messages and signature keys.
	String() string
	typeNode()
}

// PrimKind enumerates the primitive types.
type PrimKind int

const (
	KindInt PrimKind = iota
	KindFloat
	KindBool
	KindString
	KindChar
)

var primNames = [...]string{
	KindInt:    config.IntTypeName,
	KindFloat:  config.FloatTypeName,
	KindBool:   config.BoolTypeName,
	KindString: config.StringTypeName,
	KindChar:   config.CharTypeName,
}

func (k PrimKind) String() string {
	if int(k) < len(primNames) {
		return primNames[k]
	}
	return "?"
}

// TPrimitive is one of int, float, bool, string, char.
type TPrimitive struct {
	Kind PrimKind
}

func (t TPrimitive) String() string { return t.Kind.String() }
func (TPrimitive) typeNode()        {}

// TAuto is the unresolved placeholder, valid only until its first binding.
type TAuto struct{}

func (TAuto) String() string { return config.AutoTypeName }
func (TAuto) typeNode()      {}

// TArray is a fixed-size array. Size is -1 when unknown (to be inferred).
type TArray struct {
	Elem Type
	Size int
}

func (t TArray) String() string {
	if t.Elem == nil {
		return config.AutoTypeName + config.ArraySuffix
	}
	return t.Elem.String() + config.ArraySuffix
}
func (TArray) typeNode() {}

// TStruct references a user-defined struct by name.
type TStruct struct {
	Name string
}

func (t TStruct) String() string { return t.Name }
func (TStruct) typeNode()        {}

// Primitive and placeholder singletons. They are plain values, so sharing
// them never aliases mutable state.
var (
	Int    Type = TPrimitive{Kind: KindInt}
	Float  Type = TPrimitive{Kind: KindFloat}
	Bool   Type = TPrimitive{Kind: KindBool}
	String Type = TPrimitive{Kind: KindString}
	Char   Type = TPrimitive{Kind: KindChar}
	Auto   Type = TAuto{}
)

// ArrayOf builds an array type of unknown size.
func ArrayOf(elem Type) TArray {
	return TArray{Elem: elem, Size: -1}
}

// PrimitiveName returns the name of a primitive type, or "" for other types.
func PrimitiveName(t Type) string {
	if p, ok := t.(TPrimitive); ok {
		return p.Kind.String()
	}
	return ""
}

// IsPrimitive reports whether t is one of the five primitives.
func IsPrimitive(t Type) bool {
	_, ok := t.(TPrimitive)
	return ok
}

// IsKind reports whether t is the primitive of the given kind.
func IsKind(t Type, k PrimKind) bool {
	p, ok := t.(TPrimitive)
	return ok && p.Kind == k
}

// IsAuto reports whether t is the unresolved placeholder.
func IsAuto(t Type) bool {
	_, ok := t.(TAuto)
	return ok
}

// ContainsAuto reports whether t is Auto or an array of Auto.
func ContainsAuto(t Type) bool {
	switch tt := t.(type) {
	case TAuto:
		return true
	case TArray:
		return tt.Elem == nil || ContainsAuto(tt.Elem)
	}
	return false
}

// Equal compares two types structurally. Array sizes are not part of the
// structural form.
func Equal(a, b Type) bool {
	switch ta := a.(type) {
	case TPrimitive:
		tb, ok := b.(TPrimitive)
		return ok && ta.Kind == tb.Kind
	case TAuto:
		_, ok := b.(TAuto)
		return ok
	case TArray:
		tb, ok := b.(TArray)
		if !ok {
			return false
		}
		if ta.Elem == nil || tb.Elem == nil {
			return ta.Elem == nil && tb.Elem == nil
		}
		return Equal(ta.Elem, tb.Elem)
	case TStruct:
		tb, ok := b.(TStruct)
		return ok && ta.Name == tb.Name
	}
	return false
}

// IsCompatible reports whether a value of type actual may be stored where
// declared is expected: an exact structural match, or int widening to float.
func IsCompatible(declared, actual Type) bool {
	if Equal(declared, actual) {
		return true
	}
	return IsKind(actual, KindInt) && IsKind(declared, KindFloat)
}

// Parse converts a lexical type form into a Type. Any name that is not a
// primitive or auto is taken to be a struct reference.
func Parse(lexeme string) (Type, error) {
	lexeme = strings.TrimSpace(lexeme)
	if lexeme == "" {
		return nil, &ParseError{Lexeme: lexeme}
	}
	if strings.HasSuffix(lexeme, config.ArraySuffix) {
		elem, err := Parse(strings.TrimSuffix(lexeme, config.ArraySuffix))
		if err != nil {
			return nil, &ParseError{Lexeme: lexeme}
		}
		if _, nested := elem.(TArray); nested {
			return nil, &ParseError{Lexeme: lexeme, Reason: "multidimensional arrays are not supported"}
		}
		return ArrayOf(elem), nil
	}

	switch lexeme {
	case config.IntTypeName:
		return Int, nil
	case config.FloatTypeName:
		return Float, nil
	case config.BoolTypeName:
		return Bool, nil
	case config.StringTypeName:
		return String, nil
	case config.CharTypeName:
		return Char, nil
	case config.AutoTypeName:
		return Auto, nil
	}

	if !isIdentifier(lexeme) {
		return nil, &ParseError{Lexeme: lexeme}
	}
	return TStruct{Name: lexeme}, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

package evaluator

import (
	"github.com/funvibe/tlang/internal/typesystem"
)

type ObjectType string

const (
	INTEGER_OBJ      = "INTEGER"
	FLOAT_OBJ        = "FLOAT"
	BOOLEAN_OBJ      = "BOOLEAN"
	STRING_OBJ       = "STRING"
	CHAR_OBJ         = "CHAR"
	ARRAY_OBJ        = "ARRAY"
	STRUCT_OBJ       = "STRUCT"
	NIL_OBJ          = "NIL"
	ERROR_OBJ        = "ERROR"
	RETURN_VALUE_OBJ = "RETURN_VALUE"
)

// Object is a runtime value. Every Object can be stored in a symbol table.
type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() typesystem.Type // Returns the type system representation
}

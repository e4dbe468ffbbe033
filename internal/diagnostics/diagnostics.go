// Package diagnostics defines the error values reported by every stage
// of the tlang pipeline.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/tlang/internal/token"
)

// ErrorCode classifies a diagnostic.
type ErrorCode string

const (
	// AST document decoding
	ErrD001 ErrorCode = "D001" // malformed AST document

	// Static checker
	ErrA001 ErrorCode = "A001" // unresolved identifier
	ErrA002 ErrorCode = "A002" // unresolved struct or type
	ErrA003 ErrorCode = "A003" // type error
	ErrA004 ErrorCode = "A004" // redefinition
	ErrA005 ErrorCode = "A005" // unreachable statement
	ErrA006 ErrorCode = "A006" // missing return
	ErrA007 ErrorCode = "A007" // invalid declaration
	ErrA008 ErrorCode = "A008" // unresolved function signature

	// Interpreter
	ErrR001 ErrorCode = "R001" // runtime fault
	ErrR002 ErrorCode = "R002" // uninitialized read
	ErrR003 ErrorCode = "R003" // index out of bounds
	ErrR004 ErrorCode = "R004" // bad array size or allocation
	ErrR005 ErrorCode = "R005" // division by zero
	ErrR006 ErrorCode = "R006" // recursion depth exceeded

	// Internal invariant violations
	ErrI001 ErrorCode = "I001"
)

var codeTitles = map[ErrorCode]string{
	ErrD001: "malformed AST document",
	ErrA001: "unresolved identifier",
	ErrA002: "unresolved type",
	ErrA003: "type error",
	ErrA004: "redefinition",
	ErrA005: "unreachable statement",
	ErrA006: "missing return",
	ErrA007: "invalid declaration",
	ErrA008: "unresolved function",
	ErrR001: "runtime error",
	ErrR002: "uninitialized value",
	ErrR003: "index out of bounds",
	ErrR004: "invalid array",
	ErrR005: "division by zero",
	ErrR006: "recursion limit",
	ErrI001: "internal error",
}

// Title returns a short human description of the code.
func (c ErrorCode) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return "error"
}

// IsRuntime reports whether the code belongs to the interpreter.
func (c ErrorCode) IsRuntime() bool {
	return strings.HasPrefix(string(c), "R")
}

// DiagnosticError is a single reported problem.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

// NewError creates a diagnostic at the given token.
func NewError(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	if pos := e.Token.Position(); pos != "" {
		sb.WriteString(pos)
		sb.WriteString(": ")
	} else if e.File != "" {
		sb.WriteString(" ")
	}
	sb.WriteString("[")
	sb.WriteString(string(e.Code))
	sb.WriteString("] ")
	sb.WriteString(e.Message)
	return sb.String()
}

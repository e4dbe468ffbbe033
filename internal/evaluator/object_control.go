package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/typesystem"
)

// Error is a runtime fault. It propagates as a return value until it
// reaches the top of the program.
type Error struct {
	Code       diagnostics.ErrorCode
	Message    string
	Line       int
	Column     int
	StackTrace []StackFrame
}

// StackFrame for error stack traces
type StackFrame struct {
	Name   string
	File   string
	Line   int
	Column int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	var result string
	if e.Line > 0 {
		result = fmt.Sprintf("ERROR at %d:%d: %s", e.Line, e.Column, e.Message)
	} else {
		result = "ERROR: " + e.Message
	}

	// Innermost call first
	if len(e.StackTrace) > 0 {
		var sb strings.Builder
		sb.WriteString(result)
		sb.WriteString("\nStack trace:")
		for i := len(e.StackTrace) - 1; i >= 0; i-- {
			frame := e.StackTrace[i]
			fmt.Fprintf(&sb, "\n  at %s:%d (called %s)", frame.File, frame.Line, frame.Name)
		}
		result = sb.String()
	}
	return result
}
func (e *Error) RuntimeType() typesystem.Type { return nil }

// ReturnValue wraps a value that is being returned prematurely. Blocks and
// loops stop as soon as a statement produces one; the call that owns the
// body unwraps it.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType             { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string              { return rv.Value.Inspect() }
func (rv *ReturnValue) RuntimeType() typesystem.Type { return rv.Value.RuntimeType() }

package analyzer

import (
	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/token"
	"github.com/funvibe/tlang/internal/typesystem"
)

func tokenOf(node ast.Node) token.Token {
	if tp, ok := node.(ast.TokenProvider); ok {
		return tp.GetToken()
	}
	return token.Token{}
}

func newError(code diagnostics.ErrorCode, node ast.Node, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(code, tokenOf(node), format, args...)
}

func internalError(node ast.Node, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return newError(diagnostics.ErrI001, node, format, args...)
}

func typeMismatch(node ast.Node, declared, actual typesystem.Type) *diagnostics.DiagnosticError {
	return newError(diagnostics.ErrA003, node,
		"cannot assign expression of type %s to a variable of type %s", actual, declared)
}

func requireBool(node ast.Expression, t typesystem.Type) *diagnostics.DiagnosticError {
	if !typesystem.IsKind(t, typesystem.KindBool) {
		return newError(diagnostics.ErrA003, node, "condition expression requires bool type, got %s", t)
	}
	return nil
}

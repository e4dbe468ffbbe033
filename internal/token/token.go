// Package token describes source locations attached to AST nodes.
//
// Lexing happens upstream; by the time a program reaches the checker each
// node only needs to remember where it came from and how it was spelled.
package token

import "fmt"

// Token is the primary source token of an AST node.
type Token struct {
	Lexeme string
	Line   int
	Column int
}

// IsZero reports whether the token carries no position.
func (t Token) IsZero() bool {
	return t.Line == 0 && t.Column == 0
}

// Position renders "line:col", or an empty string for tokens without a position.
func (t Token) Position() string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

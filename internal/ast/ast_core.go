package ast

import (
	"github.com/funvibe/tlang/internal/token"
	"github.com/funvibe/tlang/internal/typesystem"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Assignable is an expression that can appear on the left of an assignment.
// Implemented by *Identifier, *ArrayIndexIdentifier and *StructVariableSelector.
type Assignable interface {
	Expression
	// TargetName is the name of the variable that owns the storage.
	TargetName() string
}

// Program is the root node of every AST.
type Program struct {
	File       string // Source document path
	Statements []Statement
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// VariableDeclaration declares a variable with an optional initializer.
// let x: int = 1;   let a[3]: float = {1, 2.5, 3};
// Size is set only for array declarations. Type is the declared type; the
// checker and interpreter overwrite it when it was auto.
type VariableDeclaration struct {
	Token token.Token
	Name  *Identifier
	Size  Expression
	Type  typesystem.Type
	Value Expression
}

func (vd *VariableDeclaration) Accept(v Visitor)      { v.VisitVariableDeclaration(vd) }
func (vd *VariableDeclaration) statementNode()        {}
func (vd *VariableDeclaration) TokenLiteral() string  { return vd.Token.Lexeme }
func (vd *VariableDeclaration) GetToken() token.Token { return vd.Token }

// IsArray reports whether the declaration carries an array size.
func (vd *VariableDeclaration) IsArray() bool { return vd.Size != nil }

// Assignment stores an expression into a variable, array slot or struct member.
type Assignment struct {
	Token  token.Token
	Target Assignable
	Value  Expression
}

func (a *Assignment) Accept(v Visitor)      { v.VisitAssignment(a) }
func (a *Assignment) statementNode()        {}
func (a *Assignment) TokenLiteral() string  { return a.Token.Lexeme }
func (a *Assignment) GetToken() token.Token { return a.Token }

// Block is a braced statement list with its own scope.
type Block struct {
	Token      token.Token
	Statements []Statement
}

func (b *Block) Accept(v Visitor)      { v.VisitBlock(b) }
func (b *Block) statementNode()        {}
func (b *Block) TokenLiteral() string  { return b.Token.Lexeme }
func (b *Block) GetToken() token.Token { return b.Token }

// If is a conditional with an optional else block.
type If struct {
	Token       token.Token
	Condition   Expression
	Consequence *Block
	Alternative *Block
}

func (i *If) Accept(v Visitor)      { v.VisitIf(i) }
func (i *If) statementNode()        {}
func (i *If) TokenLiteral() string  { return i.Token.Lexeme }
func (i *If) GetToken() token.Token { return i.Token }

// While loops while Condition holds.
type While struct {
	Token     token.Token
	Condition Expression
	Body      *Block
}

func (w *While) Accept(v Visitor)      { v.VisitWhile(w) }
func (w *While) statementNode()        {}
func (w *While) TokenLiteral() string  { return w.Token.Lexeme }
func (w *While) GetToken() token.Token { return w.Token }

// For is a C-style loop. Init and Step are optional; Init is scoped to the loop.
type For struct {
	Token     token.Token
	Init      *VariableDeclaration
	Condition Expression
	Step      *Assignment
	Body      *Block
}

func (f *For) Accept(v Visitor)      { v.VisitFor(f) }
func (f *For) statementNode()        {}
func (f *For) TokenLiteral() string  { return f.Token.Lexeme }
func (f *For) GetToken() token.Token { return f.Token }

// Print writes the textual form of Value followed by a newline.
type Print struct {
	Token token.Token
	Value Expression
}

func (p *Print) Accept(v Visitor)      { v.VisitPrint(p) }
func (p *Print) statementNode()        {}
func (p *Print) TokenLiteral() string  { return p.Token.Lexeme }
func (p *Print) GetToken() token.Token { return p.Token }

// Return leaves the enclosing function with Value.
type Return struct {
	Token token.Token
	Value Expression
}

func (r *Return) Accept(v Visitor)      { v.VisitReturn(r) }
func (r *Return) statementNode()        {}
func (r *Return) TokenLiteral() string  { return r.Token.Lexeme }
func (r *Return) GetToken() token.Token { return r.Token }

// Parameter is a formal function parameter.
type Parameter struct {
	Token token.Token
	Name  *Identifier
	Type  typesystem.Type
}

// FunctionDeclaration declares a function. ReturnType is overwritten by the
// first executed or checked return when it was declared auto.
type FunctionDeclaration struct {
	Token      token.Token
	Name       *Identifier
	Parameters []*Parameter
	ReturnType typesystem.Type
	Body       *Block
}

func (fd *FunctionDeclaration) Accept(v Visitor)      { v.VisitFunctionDeclaration(fd) }
func (fd *FunctionDeclaration) statementNode()        {}
func (fd *FunctionDeclaration) TokenLiteral() string  { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token { return fd.Token }

// ParameterTypes returns the declared parameter types in order.
func (fd *FunctionDeclaration) ParameterTypes() []typesystem.Type {
	types := make([]typesystem.Type, len(fd.Parameters))
	for i, p := range fd.Parameters {
		types[i] = p.Type
	}
	return types
}

// Struct declares a record type. Members are variable and function declarations.
type Struct struct {
	Token   token.Token
	Name    *Identifier
	Members []Statement
}

func (s *Struct) Accept(v Visitor)      { v.VisitStruct(s) }
func (s *Struct) statementNode()        {}
func (s *Struct) TokenLiteral() string  { return s.Token.Lexeme }
func (s *Struct) GetToken() token.Token { return s.Token }

// TypeMap records the type resolved for a node, typically an auto slot
// (a declaration or a function's return type) once it has been bound.
type TypeMap map[Node]typesystem.Type

package ast

import (
	"github.com/funvibe/tlang/internal/token"
	"github.com/funvibe/tlang/internal/typesystem"
)

// Literal is a constant as spelled in the source. Raw keeps the upstream
// spelling; the passes parse it on demand.
type Literal struct {
	Token token.Token
	Kind  typesystem.PrimKind
	Raw   string
}

func (l *Literal) Accept(v Visitor)      { v.VisitLiteral(l) }
func (l *Literal) expressionNode()       {}
func (l *Literal) TokenLiteral() string  { return l.Token.Lexeme }
func (l *Literal) GetToken() token.Token { return l.Token }

// Type returns the primitive type of the literal.
func (l *Literal) Type() typesystem.Type {
	return typesystem.TPrimitive{Kind: l.Kind}
}

// Identifier names a variable.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)      { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) TargetName() string    { return i.Value }

// ArrayIndexIdentifier is an element access: a[i]
type ArrayIndexIdentifier struct {
	Token token.Token
	Name  *Identifier
	Index Expression
}

func (ai *ArrayIndexIdentifier) Accept(v Visitor)      { v.VisitArrayIndexIdentifier(ai) }
func (ai *ArrayIndexIdentifier) expressionNode()       {}
func (ai *ArrayIndexIdentifier) TokenLiteral() string  { return ai.Token.Lexeme }
func (ai *ArrayIndexIdentifier) GetToken() token.Token { return ai.Token }
func (ai *ArrayIndexIdentifier) TargetName() string    { return ai.Name.Value }

// ArrayLiteral is a braced element list: {1, 2, 3}
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) Accept(v Visitor)      { v.VisitArrayLiteral(al) }
func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }

// BinaryOperator applies Operator to Left and Right.
type BinaryOperator struct {
	Token    token.Token // The operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (bo *BinaryOperator) Accept(v Visitor)      { v.VisitBinaryOperator(bo) }
func (bo *BinaryOperator) expressionNode()       {}
func (bo *BinaryOperator) TokenLiteral() string  { return bo.Token.Lexeme }
func (bo *BinaryOperator) GetToken() token.Token { return bo.Token }

// UnaryOperator is a prefix "-" or "not".
type UnaryOperator struct {
	Token    token.Token
	Operator string
	Operand  Expression
}

func (uo *UnaryOperator) Accept(v Visitor)      { v.VisitUnaryOperator(uo) }
func (uo *UnaryOperator) expressionNode()       {}
func (uo *UnaryOperator) TokenLiteral() string  { return uo.Token.Lexeme }
func (uo *UnaryOperator) GetToken() token.Token { return uo.Token }

// FunctionCall invokes the overload of Name selected by the argument types.
type FunctionCall struct {
	Token     token.Token
	Name      *Identifier
	Arguments []Expression
}

func (fc *FunctionCall) Accept(v Visitor)      { v.VisitFunctionCall(fc) }
func (fc *FunctionCall) expressionNode()       {}
func (fc *FunctionCall) TokenLiteral() string  { return fc.Token.Lexeme }
func (fc *FunctionCall) GetToken() token.Token { return fc.Token }

// StructVariableSelector reads or writes a struct member: p.x
type StructVariableSelector struct {
	Token  token.Token
	Base   *Identifier
	Member *Identifier
}

func (sv *StructVariableSelector) Accept(v Visitor)      { v.VisitStructVariableSelector(sv) }
func (sv *StructVariableSelector) expressionNode()       {}
func (sv *StructVariableSelector) TokenLiteral() string  { return sv.Token.Lexeme }
func (sv *StructVariableSelector) GetToken() token.Token { return sv.Token }
func (sv *StructVariableSelector) TargetName() string    { return sv.Base.Value }

// StructFunctionSelector calls a struct member function: p.move(1, 2)
type StructFunctionSelector struct {
	Token token.Token
	Base  *Identifier
	Call  *FunctionCall
}

func (sf *StructFunctionSelector) Accept(v Visitor)      { v.VisitStructFunctionSelector(sf) }
func (sf *StructFunctionSelector) expressionNode()       {}
func (sf *StructFunctionSelector) TokenLiteral() string  { return sf.Token.Lexeme }
func (sf *StructFunctionSelector) GetToken() token.Token { return sf.Token }

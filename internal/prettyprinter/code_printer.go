// Package prettyprinter renders a tree back into tlang surface syntax.
package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/config"
	"github.com/funvibe/tlang/internal/typesystem"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	config.OpOr:  1,
	config.OpAnd: 2,
	config.OpEq:  3,
	config.OpNe:  3,
	config.OpLt:  4,
	config.OpGt:  4,
	config.OpLe:  4,
	config.OpGe:  4,
	config.OpAdd: 5,
	config.OpSub: 5,
	config.OpMul: 6,
	config.OpDiv: 6,
}

// prefixPrecedence binds tighter than any binary operator.
const prefixPrecedence = 100

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 10 // Default high precedence for unknown ops
}

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
	column int // current column position
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders node with a fresh printer.
func Print(node ast.Node) string {
	p := NewCodePrinter()
	node.Accept(p)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.column = p.indent * 4
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

// printExpr prints an expression, adding parentheses only if needed.
// Every binary operator is left-associative.
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.BinaryOperator:
		prec := getPrecedence(e.Operator)
		needParens := prec < parentPrec || (prec == parentPrec && isRight)
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Left, prec, false)
		p.write(" " + e.Operator + " ")
		p.printExpr(e.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.UnaryOperator:
		p.write(e.Operator)
		if e.Operator == config.OpNot {
			p.write(" ")
		}
		p.printExpr(e.Operand, prefixPrecedence, false)
	default:
		expr.Accept(p)
	}
}

func (p *CodePrinter) printBlockBody(stmts []ast.Statement) {
	p.write("{")
	p.writeln()
	p.indent++
	for _, stmt := range stmts {
		p.writeIndent()
		stmt.Accept(p)
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) printList(exprs []ast.Expression) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(e, 0, false)
	}
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for _, stmt := range n.Statements {
		stmt.Accept(p)
		p.writeln()
	}
}

// declaration prints a variable declaration without the terminating semicolon.
func (p *CodePrinter) declaration(n *ast.VariableDeclaration) {
	p.write(config.LetKeyword + " " + n.Name.Value)
	typ := n.Type
	if n.Size != nil {
		p.write("[")
		p.printExpr(n.Size, 0, false)
		p.write("]")
		if arr, ok := typ.(typesystem.TArray); ok && arr.Elem != nil {
			typ = arr.Elem
		}
	}
	p.write(": " + typeName(typ))
	if n.Value != nil {
		p.write(" = ")
		p.printExpr(n.Value, 0, false)
	}
}

func (p *CodePrinter) assignment(n *ast.Assignment) {
	p.printExpr(n.Target, 0, false)
	p.write(" = ")
	p.printExpr(n.Value, 0, false)
}

func (p *CodePrinter) VisitVariableDeclaration(n *ast.VariableDeclaration) {
	p.declaration(n)
	p.write(";")
}

func (p *CodePrinter) VisitAssignment(n *ast.Assignment) {
	p.assignment(n)
	p.write(";")
}

func (p *CodePrinter) VisitBlock(n *ast.Block) {
	p.printBlockBody(n.Statements)
}

func (p *CodePrinter) VisitIf(n *ast.If) {
	p.write(config.IfKeyword + " (")
	p.printExpr(n.Condition, 0, false)
	p.write(") ")
	p.printBlockBody(n.Consequence.Statements)
	if n.Alternative != nil {
		p.write(" " + config.ElseKeyword + " ")
		p.printBlockBody(n.Alternative.Statements)
	}
}

func (p *CodePrinter) VisitWhile(n *ast.While) {
	p.write(config.WhileKeyword + " (")
	p.printExpr(n.Condition, 0, false)
	p.write(") ")
	p.printBlockBody(n.Body.Statements)
}

func (p *CodePrinter) VisitFor(n *ast.For) {
	p.write(config.ForKeyword + " (")
	if n.Init != nil {
		p.declaration(n.Init)
	}
	p.write("; ")
	p.printExpr(n.Condition, 0, false)
	p.write(";")
	if n.Step != nil {
		p.write(" ")
		p.assignment(n.Step)
	}
	p.write(") ")
	p.printBlockBody(n.Body.Statements)
}

func (p *CodePrinter) VisitPrint(n *ast.Print) {
	p.write(config.PrintKeyword + " ")
	p.printExpr(n.Value, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitReturn(n *ast.Return) {
	p.write(config.ReturnKeyword + " ")
	p.printExpr(n.Value, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitFunctionDeclaration(n *ast.FunctionDeclaration) {
	p.write(config.FuncKeyword + " " + n.Name.Value + "(")
	for i, param := range n.Parameters {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name.Value + ": " + typeName(param.Type))
	}
	p.write(") -> " + typeName(n.ReturnType) + " ")
	p.printBlockBody(n.Body.Statements)
}

func (p *CodePrinter) VisitStruct(n *ast.Struct) {
	p.write(config.StructKeyword + " " + n.Name.Value + " ")
	p.printBlockBody(n.Members)
}

func (p *CodePrinter) VisitLiteral(n *ast.Literal) {
	switch n.Kind {
	case typesystem.KindString:
		p.write(strconv.Quote(n.Raw))
	case typesystem.KindChar:
		r := []rune(n.Raw)
		if len(r) != 1 {
			p.write("<???>")
			return
		}
		p.write(strconv.QuoteRune(r[0]))
	default:
		p.write(n.Raw)
	}
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	p.write(n.Value)
}

func (p *CodePrinter) VisitArrayIndexIdentifier(n *ast.ArrayIndexIdentifier) {
	p.write(n.Name.Value + "[")
	p.printExpr(n.Index, 0, false)
	p.write("]")
}

func (p *CodePrinter) VisitArrayLiteral(n *ast.ArrayLiteral) {
	p.write("{")
	p.printList(n.Elements)
	p.write("}")
}

func (p *CodePrinter) VisitBinaryOperator(n *ast.BinaryOperator) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitUnaryOperator(n *ast.UnaryOperator) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitFunctionCall(n *ast.FunctionCall) {
	p.write(n.Name.Value + "(")
	p.printList(n.Arguments)
	p.write(")")
}

func (p *CodePrinter) VisitStructVariableSelector(n *ast.StructVariableSelector) {
	p.write(n.Base.Value + "." + n.Member.Value)
}

func (p *CodePrinter) VisitStructFunctionSelector(n *ast.StructFunctionSelector) {
	p.write(n.Base.Value + ".")
	n.Call.Accept(p)
}

func typeName(t typesystem.Type) string {
	if t == nil {
		return "<???>"
	}
	return t.String()
}

// Package astio reads AST documents: YAML renditions of a parsed tlang
// program produced by an upstream parser.
package astio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/config"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/token"
	"github.com/funvibe/tlang/internal/typesystem"
)

// Decode reads one AST document from r.
func Decode(r io.Reader, file string) (*ast.Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return DecodeBytes(data, file)
}

// DecodeBytes decodes an AST document. Problems with the document are
// returned as *diagnostics.DiagnosticError with code D001.
func DecodeBytes(data []byte, file string) (*ast.Program, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, withFile(malformed(nil, "empty document"), file)
		}
		return nil, withFile(malformed(nil, "%s", err.Error()), file)
	}

	d := &decoder{}
	prog, err := d.program(&doc)
	if err != nil {
		return nil, withFile(err, file)
	}
	prog.File = file
	return prog, nil
}

func withFile(err error, file string) error {
	var diag *diagnostics.DiagnosticError
	if errors.As(err, &diag) && diag.File == "" {
		diag.File = file
	}
	return err
}

type decoder struct{}

func malformed(n *yaml.Node, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrD001, tokenAt(n, ""), "%s", fmt.Sprintf(format, args...))
}

func tokenAt(n *yaml.Node, lexeme string) token.Token {
	if n == nil {
		return token.Token{Lexeme: lexeme}
	}
	return token.Token{Lexeme: lexeme, Line: n.Line, Column: n.Column}
}

// entry is a single-key mapping such as {let: {...}}.
type entry struct {
	key   string
	keyAt *yaml.Node
	value *yaml.Node
}

func single(n *yaml.Node, what string) (entry, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return entry{}, malformed(n, "%s must be a mapping with exactly one key", what)
	}
	return entry{key: n.Content[0].Value, keyAt: n.Content[0], value: n.Content[1]}, nil
}

// fields unpacks a mapping, rejecting unknown keys and missing required ones.
func fields(n *yaml.Node, what string, required []string, optional ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, malformed(n, "%s must be a mapping", what)
	}
	allowed := make(map[string]bool, len(required)+len(optional))
	for _, k := range required {
		allowed[k] = true
	}
	for _, k := range optional {
		allowed[k] = true
	}

	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if !allowed[k.Value] {
			return nil, malformed(k, "unknown field %q in %s", k.Value, what)
		}
		if _, dup := out[k.Value]; dup {
			return nil, malformed(k, "duplicate field %q in %s", k.Value, what)
		}
		out[k.Value] = n.Content[i+1]
	}
	for _, k := range required {
		if _, ok := out[k]; !ok {
			return nil, malformed(n, "%s is missing field %q", what, k)
		}
	}
	return out, nil
}

func scalar(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", malformed(n, "%s must be a scalar", what)
	}
	return n.Value, nil
}

func sequence(n *yaml.Node, what string) ([]*yaml.Node, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, malformed(n, "%s must be a list", what)
	}
	return n.Content, nil
}

func (d *decoder) program(doc *yaml.Node) (*ast.Program, error) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	f, err := fields(root, "document", []string{"program"})
	if err != nil {
		return nil, err
	}
	stmts, err := d.statements(f["program"], "program")
	if err != nil {
		return nil, err
	}
	return &ast.Program{Statements: stmts}, nil
}

func (d *decoder) statements(n *yaml.Node, what string) ([]ast.Statement, error) {
	items, err := sequence(n, what)
	if err != nil {
		return nil, err
	}
	stmts := make([]ast.Statement, 0, len(items))
	for _, item := range items {
		stmt, err := d.statement(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (d *decoder) block(n *yaml.Node, at *yaml.Node) (*ast.Block, error) {
	stmts, err := d.statements(n, "block")
	if err != nil {
		return nil, err
	}
	return &ast.Block{Token: tokenAt(at, "{"), Statements: stmts}, nil
}

func (d *decoder) statement(n *yaml.Node) (ast.Statement, error) {
	e, err := single(n, "statement")
	if err != nil {
		return nil, err
	}

	switch e.key {
	case "let":
		return d.letStatement(e)
	case "assign":
		return d.assignStatement(e)
	case "print":
		val, err := d.expression(e.value)
		if err != nil {
			return nil, err
		}
		return &ast.Print{Token: tokenAt(e.keyAt, config.PrintKeyword), Value: val}, nil
	case "return":
		val, err := d.expression(e.value)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Token: tokenAt(e.keyAt, config.ReturnKeyword), Value: val}, nil
	case "block":
		return d.block(e.value, e.keyAt)
	case "if":
		return d.ifStatement(e)
	case "while":
		f, err := fields(e.value, "while", []string{"cond", "body"})
		if err != nil {
			return nil, err
		}
		cond, err := d.expression(f["cond"])
		if err != nil {
			return nil, err
		}
		body, err := d.block(f["body"], f["body"])
		if err != nil {
			return nil, err
		}
		return &ast.While{Token: tokenAt(e.keyAt, config.WhileKeyword), Condition: cond, Body: body}, nil
	case "for":
		return d.forStatement(e)
	case "func":
		return d.funcStatement(e)
	case "struct":
		return d.structStatement(e)
	}
	return nil, malformed(e.keyAt, "unknown statement %q", e.key)
}

func (d *decoder) typeOf(n *yaml.Node, what string) (typesystem.Type, error) {
	lexeme, err := scalar(n, what)
	if err != nil {
		return nil, err
	}
	t, err := typesystem.Parse(lexeme)
	if err != nil {
		return nil, malformed(n, "%s: %s", what, err.Error())
	}
	return t, nil
}

func (d *decoder) identifier(n *yaml.Node, what string) (*ast.Identifier, error) {
	name, err := scalar(n, what)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, malformed(n, "%s must not be empty", what)
	}
	return &ast.Identifier{Token: tokenAt(n, name), Value: name}, nil
}

func (d *decoder) letStatement(e entry) (*ast.VariableDeclaration, error) {
	f, err := fields(e.value, "let", []string{"name", "type"}, "size", "value")
	if err != nil {
		return nil, err
	}
	name, err := d.identifier(f["name"], "variable name")
	if err != nil {
		return nil, err
	}
	typ, err := d.typeOf(f["type"], "variable type")
	if err != nil {
		return nil, err
	}

	decl := &ast.VariableDeclaration{Token: tokenAt(e.keyAt, config.LetKeyword), Name: name, Type: typ}
	if sizeNode, ok := f["size"]; ok {
		if decl.Size, err = d.expression(sizeNode); err != nil {
			return nil, err
		}
		// let a[3]: int declares an int[]
		if _, isArray := typ.(typesystem.TArray); !isArray {
			decl.Type = typesystem.ArrayOf(typ)
		}
	} else if _, isArray := typ.(typesystem.TArray); isArray {
		return nil, malformed(f["type"], "array variable %s needs a size", name.Value)
	}

	if valueNode, ok := f["value"]; ok {
		if decl.Value, err = d.expression(valueNode); err != nil {
			return nil, err
		}
	}
	return decl, nil
}

func (d *decoder) assignStatement(e entry) (*ast.Assignment, error) {
	f, err := fields(e.value, "assign", []string{"target", "value"})
	if err != nil {
		return nil, err
	}
	target, err := d.expression(f["target"])
	if err != nil {
		return nil, err
	}
	assignable, ok := target.(ast.Assignable)
	if !ok {
		return nil, malformed(f["target"], "assignment target must be a variable, array element or struct member")
	}
	val, err := d.expression(f["value"])
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Token: tokenAt(e.keyAt, "="), Target: assignable, Value: val}, nil
}

func (d *decoder) ifStatement(e entry) (*ast.If, error) {
	f, err := fields(e.value, "if", []string{"cond", "then"}, "else")
	if err != nil {
		return nil, err
	}
	cond, err := d.expression(f["cond"])
	if err != nil {
		return nil, err
	}
	then, err := d.block(f["then"], f["then"])
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Token: tokenAt(e.keyAt, config.IfKeyword), Condition: cond, Consequence: then}
	if elseNode, ok := f["else"]; ok {
		if stmt.Alternative, err = d.block(elseNode, elseNode); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (d *decoder) forStatement(e entry) (*ast.For, error) {
	f, err := fields(e.value, "for", []string{"cond", "body"}, "init", "step")
	if err != nil {
		return nil, err
	}
	stmt := &ast.For{Token: tokenAt(e.keyAt, config.ForKeyword)}

	if initNode, ok := f["init"]; ok {
		init, err := single(initNode, "for init")
		if err != nil {
			return nil, err
		}
		if init.key != "let" {
			return nil, malformed(init.keyAt, "for init must be a let statement")
		}
		if stmt.Init, err = d.letStatement(init); err != nil {
			return nil, err
		}
	}
	if stmt.Condition, err = d.expression(f["cond"]); err != nil {
		return nil, err
	}
	if stepNode, ok := f["step"]; ok {
		step, err := single(stepNode, "for step")
		if err != nil {
			return nil, err
		}
		if step.key != "assign" {
			return nil, malformed(step.keyAt, "for step must be an assign statement")
		}
		if stmt.Step, err = d.assignStatement(step); err != nil {
			return nil, err
		}
	}
	if stmt.Body, err = d.block(f["body"], f["body"]); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (d *decoder) funcStatement(e entry) (*ast.FunctionDeclaration, error) {
	f, err := fields(e.value, "func", []string{"name", "returns", "body"}, "params")
	if err != nil {
		return nil, err
	}
	name, err := d.identifier(f["name"], "function name")
	if err != nil {
		return nil, err
	}
	ret, err := d.typeOf(f["returns"], "return type")
	if err != nil {
		return nil, err
	}
	decl := &ast.FunctionDeclaration{Token: tokenAt(e.keyAt, config.FuncKeyword), Name: name, ReturnType: ret}

	if paramsNode, ok := f["params"]; ok {
		items, err := sequence(paramsNode, "params")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			pf, err := fields(item, "parameter", []string{"name", "type"})
			if err != nil {
				return nil, err
			}
			pname, err := d.identifier(pf["name"], "parameter name")
			if err != nil {
				return nil, err
			}
			ptype, err := d.typeOf(pf["type"], "parameter type")
			if err != nil {
				return nil, err
			}
			decl.Parameters = append(decl.Parameters, &ast.Parameter{Token: pname.Token, Name: pname, Type: ptype})
		}
	}

	if decl.Body, err = d.block(f["body"], f["body"]); err != nil {
		return nil, err
	}
	return decl, nil
}

func (d *decoder) structStatement(e entry) (*ast.Struct, error) {
	f, err := fields(e.value, "struct", []string{"name"}, "members")
	if err != nil {
		return nil, err
	}
	name, err := d.identifier(f["name"], "struct name")
	if err != nil {
		return nil, err
	}
	stmt := &ast.Struct{Token: tokenAt(e.keyAt, config.StructKeyword), Name: name}
	if membersNode, ok := f["members"]; ok {
		members, err := d.statements(membersNode, "struct members")
		if err != nil {
			return nil, err
		}
		for i, m := range members {
			switch m.(type) {
			case *ast.VariableDeclaration, *ast.FunctionDeclaration:
			default:
				item := membersNode.Content[i]
				return nil, malformed(item, "struct members must be let or func statements")
			}
		}
		stmt.Members = members
	}
	return stmt, nil
}

var binaryOperators = func() []string {
	ops := []string{
		config.OpAdd, config.OpSub, config.OpMul, config.OpDiv,
		config.OpEq, config.OpNe, config.OpLt, config.OpGt, config.OpLe, config.OpGe,
		config.OpAnd, config.OpOr,
	}
	sort.Strings(ops)
	return ops
}()

func (d *decoder) expression(n *yaml.Node) (ast.Expression, error) {
	e, err := single(n, "expression")
	if err != nil {
		return nil, err
	}

	switch e.key {
	case "int", "float", "bool", "string", "char":
		return d.literal(e)
	case "ident":
		return d.identifier(e.value, "identifier")
	case "index":
		f, err := fields(e.value, "index", []string{"name", "at"})
		if err != nil {
			return nil, err
		}
		name, err := d.identifier(f["name"], "array name")
		if err != nil {
			return nil, err
		}
		at, err := d.expression(f["at"])
		if err != nil {
			return nil, err
		}
		return &ast.ArrayIndexIdentifier{Token: tokenAt(e.keyAt, name.Value), Name: name, Index: at}, nil
	case "array":
		items, err := sequence(e.value, "array")
		if err != nil {
			return nil, err
		}
		lit := &ast.ArrayLiteral{Token: tokenAt(e.keyAt, "{")}
		for _, item := range items {
			el, err := d.expression(item)
			if err != nil {
				return nil, err
			}
			lit.Elements = append(lit.Elements, el)
		}
		return lit, nil
	case "binary":
		f, err := fields(e.value, "binary", []string{"op", "left", "right"})
		if err != nil {
			return nil, err
		}
		op, err := scalar(f["op"], "operator")
		if err != nil {
			return nil, err
		}
		if i := sort.SearchStrings(binaryOperators, op); i == len(binaryOperators) || binaryOperators[i] != op {
			return nil, malformed(f["op"], "unknown binary operator %q", op)
		}
		left, err := d.expression(f["left"])
		if err != nil {
			return nil, err
		}
		right, err := d.expression(f["right"])
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOperator{Token: tokenAt(f["op"], op), Left: left, Operator: op, Right: right}, nil
	case "unary":
		f, err := fields(e.value, "unary", []string{"op", "operand"})
		if err != nil {
			return nil, err
		}
		op, err := scalar(f["op"], "operator")
		if err != nil {
			return nil, err
		}
		if op != config.OpSub && op != config.OpNot {
			return nil, malformed(f["op"], "unknown unary operator %q", op)
		}
		operand, err := d.expression(f["operand"])
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOperator{Token: tokenAt(f["op"], op), Operator: op, Operand: operand}, nil
	case "call":
		return d.call(e.value, e.keyAt)
	case "member":
		f, err := fields(e.value, "member", []string{"base", "name"})
		if err != nil {
			return nil, err
		}
		base, err := d.identifier(f["base"], "struct variable")
		if err != nil {
			return nil, err
		}
		member, err := d.identifier(f["name"], "member name")
		if err != nil {
			return nil, err
		}
		return &ast.StructVariableSelector{Token: tokenAt(e.keyAt, "."), Base: base, Member: member}, nil
	case "method":
		f, err := fields(e.value, "method", []string{"base", "call"})
		if err != nil {
			return nil, err
		}
		base, err := d.identifier(f["base"], "struct variable")
		if err != nil {
			return nil, err
		}
		call, err := d.call(f["call"], f["call"])
		if err != nil {
			return nil, err
		}
		return &ast.StructFunctionSelector{Token: tokenAt(e.keyAt, "."), Base: base, Call: call}, nil
	}
	return nil, malformed(e.keyAt, "unknown expression %q", e.key)
}

func (d *decoder) call(n *yaml.Node, at *yaml.Node) (*ast.FunctionCall, error) {
	f, err := fields(n, "call", []string{"name"}, "args")
	if err != nil {
		return nil, err
	}
	name, err := d.identifier(f["name"], "function name")
	if err != nil {
		return nil, err
	}
	call := &ast.FunctionCall{Token: tokenAt(at, name.Value), Name: name}
	if argsNode, ok := f["args"]; ok {
		items, err := sequence(argsNode, "args")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			arg, err := d.expression(item)
			if err != nil {
				return nil, err
			}
			call.Arguments = append(call.Arguments, arg)
		}
	}
	return call, nil
}

func (d *decoder) literal(e entry) (*ast.Literal, error) {
	raw, err := scalar(e.value, e.key+" literal")
	if err != nil {
		return nil, err
	}
	lit := &ast.Literal{Token: tokenAt(e.value, raw), Raw: raw}

	switch e.key {
	case "int":
		lit.Kind = typesystem.KindInt
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, malformed(e.value, "invalid int literal %q", raw)
		}
	case "float":
		lit.Kind = typesystem.KindFloat
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return nil, malformed(e.value, "invalid float literal %q", raw)
		}
	case "bool":
		lit.Kind = typesystem.KindBool
		switch strings.ToLower(raw) {
		case "true":
			lit.Raw = "true"
		case "false":
			lit.Raw = "false"
		default:
			return nil, malformed(e.value, "invalid bool literal %q", raw)
		}
	case "string":
		lit.Kind = typesystem.KindString
	case "char":
		lit.Kind = typesystem.KindChar
		if utf8.RuneCountInString(raw) != 1 {
			return nil, malformed(e.value, "char literal must be exactly one character, got %q", raw)
		}
	}
	return lit, nil
}

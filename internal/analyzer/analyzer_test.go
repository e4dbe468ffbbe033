package analyzer

import (
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/astio"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/pipeline"
	"github.com/funvibe/tlang/internal/typesystem"
)

func analyzeDoc(t *testing.T, doc string) (*ast.Program, *Analyzer, []*diagnostics.DiagnosticError) {
	t.Helper()
	program, err := astio.DecodeBytes([]byte(doc), "check.yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a := New()
	return program, a, a.Analyze(program)
}

// expectAnalyzerError asserts that the checker stops with the given code
// and a message containing substr.
func expectAnalyzerError(t *testing.T, doc string, code diagnostics.ErrorCode, substr string) *diagnostics.DiagnosticError {
	t.Helper()
	_, _, errs := analyzeDoc(t, doc)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error %s, got %v", code, errs)
	}
	e := errs[0]
	if e.Code != code {
		t.Fatalf("expected error %s, got %s", code, e.Error())
	}
	if !strings.Contains(e.Message, substr) {
		t.Errorf("expected error message to contain %q, got: %s", substr, e.Message)
	}
	return e
}

func expectNoAnalyzerErrors(t *testing.T, doc string) *Analyzer {
	t.Helper()
	_, a, errs := analyzeDoc(t, doc)
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got: %s", errs[0].Error())
	}
	return a
}

func TestAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code diagnostics.ErrorCode
		msg  string
	}{
		{"undeclared variable", `program: [{print: {ident: nope}}]`,
			diagnostics.ErrA001, "cannot resolve identifier nope"},
		{"undeclared assignment target", `program: [{assign: {target: {ident: x}, value: {int: 1}}}]`,
			diagnostics.ErrA001, "cannot resolve identifier x"},
		{"unknown member", `program:
  - struct: {name: P, members: [{let: {name: x, type: int}}]}
  - let: {name: p, type: P}
  - print: {member: {base: p, name: y}}
`, diagnostics.ErrA001, "struct P has no member y"},
		{"unknown struct type", `program: [{let: {name: p, type: Missing}}]`,
			diagnostics.ErrA002, "cannot resolve struct type Missing"},
		{"unknown struct element type", `program: [{let: {name: p, size: {int: 2}, type: Missing}}]`,
			diagnostics.ErrA002, "Missing"},
		{"declaration mismatch", `program: [{let: {name: x, type: int, value: {string: "s"}}}]`,
			diagnostics.ErrA003, "cannot assign expression of type string to a variable of type int"},
		{"no narrowing", `program: [{let: {name: x, type: int, value: {float: 1.5}}}]`,
			diagnostics.ErrA003, "type float to a variable of type int"},
		{"bad operands", `program: [{print: {binary: {op: "-", left: {string: "a"}, right: {int: 1}}}}]`,
			diagnostics.ErrA003, "operator '-' cannot be applied to string and int"},
		{"bool concatenation", `program: [{print: {binary: {op: "+", left: {string: "a"}, right: {bool: true}}}}]`,
			diagnostics.ErrA003, "cannot be applied to string and bool"},
		{"incomparable", `program: [{print: {binary: {op: "<", left: {bool: true}, right: {bool: false}}}}]`,
			diagnostics.ErrA003, "incomparable types bool and bool"},
		{"bad unary", `program: [{print: {unary: {op: "not", operand: {int: 1}}}}]`,
			diagnostics.ErrA003, "operator 'not' cannot be applied to int"},
		{"non-bool condition", `program: [{while: {cond: {int: 1}, body: []}}]`,
			diagnostics.ErrA003, "condition expression requires bool type, got int"},
		{"float array size", `program: [{let: {name: a, size: {float: 2}, type: int}}]`,
			diagnostics.ErrA003, "array size can only be of type int"},
		{"float index", `program:
  - let: {name: a, size: {int: 2}, type: int}
  - print: {index: {name: a, at: {float: 1}}}
`, diagnostics.ErrA003, "array index must be of type int"},
		{"index of scalar", `program:
  - let: {name: a, type: int, value: {int: 1}}
  - print: {index: {name: a, at: {int: 0}}}
`, diagnostics.ErrA003, "array type expected, got int"},
		{"heterogeneous array", `program: [{print: {array: [{int: 1}, {string: "a"}]}}]`,
			diagnostics.ErrA003, "array values must all be of the same type"},
		{"nested array", `program:
  - let: {name: a, size: {int: 1}, type: int, value: {array: [{int: 1}]}}
  - print: {array: [{ident: a}]}
`, diagnostics.ErrA003, "multidimensional arrays are not supported"},
		{"array into scalar", `program: [{let: {name: x, type: int, value: {array: [{int: 1}]}}}]`,
			diagnostics.ErrA003, "cannot assign expression of type int[]"},
		{"auto fixed once", `program:
  - let: {name: x, type: auto}
  - assign: {target: {ident: x}, value: {int: 1}}
  - assign: {target: {ident: x}, value: {string: "s"}}
`, diagnostics.ErrA003, "type string to a variable of type int"},
		{"wrong return type", `program:
  - func: {name: f, returns: int, body: [{return: {string: "s"}}]}
`, diagnostics.ErrA003, "returning type string, required int"},
		{"argument type selects the overload", `program:
  - struct: {name: P}
  - func: {name: f, returns: int, params: [{name: p, type: P}], body: [{return: {int: 1}}]}
  - let: {name: q, type: int, value: {int: 1}}
  - print: {call: {name: f, args: [{ident: q}]}}
`, diagnostics.ErrA008, "cannot resolve function f(int)"},
		{"member of scalar", `program:
  - let: {name: x, type: int, value: {int: 1}}
  - print: {member: {base: x, name: y}}
`, diagnostics.ErrA003, "x is not a struct"},
		{"variable redefinition", `program:
  - let: {name: x, type: int}
  - let: {name: x, type: float}
`, diagnostics.ErrA004, "variable x has already been declared"},
		{"function redefinition", `program:
  - func: {name: f, returns: int, params: [{name: a, type: int}], body: [{return: {int: 1}}]}
  - func: {name: f, returns: float, params: [{name: b, type: int}], body: [{return: {float: 1}}]}
`, diagnostics.ErrA004, "function f(int) has already been defined"},
		{"duplicate parameter", `program:
  - func: {name: f, returns: int, params: [{name: a, type: int}, {name: a, type: float}], body: [{return: {int: 1}}]}
`, diagnostics.ErrA004, "parameter a has already been declared"},
		{"struct redefinition", `program:
  - struct: {name: P}
  - struct: {name: P}
`, diagnostics.ErrA004, "duplicate struct P"},
		{"unreachable", `program:
  - func:
      name: f
      returns: int
      body:
        - return: {int: 1}
        - print: {int: 2}
`, diagnostics.ErrA005, "unreachable statement"},
		{"unreachable after if-else", `program:
  - func:
      name: f
      returns: int
      params: [{name: b, type: bool}]
      body:
        - if: {cond: {ident: b}, then: [{return: {int: 1}}], else: [{return: {int: 2}}]}
        - return: {int: 3}
`, diagnostics.ErrA005, "unreachable statement"},
		{"missing return", `program:
  - func: {name: f, returns: int, body: [{print: {int: 1}}]}
`, diagnostics.ErrA006, "function f must return a value"},
		{"return only in one branch", `program:
  - func:
      name: f
      returns: int
      params: [{name: b, type: bool}]
      body:
        - if: {cond: {ident: b}, then: [{return: {int: 1}}]}
`, diagnostics.ErrA006, "must return a value"},
		{"return only in loop", `program:
  - func:
      name: f
      returns: int
      body:
        - while: {cond: {bool: true}, body: [{return: {int: 1}}]}
`, diagnostics.ErrA006, "must return a value"},
		{"function in block", `program:
  - block:
      - func: {name: f, returns: int, body: [{return: {int: 1}}]}
`, diagnostics.ErrA007, "cannot nest functions"},
		{"function in function", `program:
  - func:
      name: f
      returns: int
      body:
        - func: {name: g, returns: int, body: [{return: {int: 1}}]}
        - return: {int: 1}
`, diagnostics.ErrA007, "g is declared inside f"},
		{"auto parameter", `program:
  - func: {name: f, returns: int, params: [{name: a, type: auto}], body: [{return: {int: 1}}]}
`, diagnostics.ErrA007, "parameter a cannot be of type auto"},
		{"auto struct member", `program:
  - struct: {name: P, members: [{let: {name: x, type: auto}}]}
`, diagnostics.ErrA007, "cannot use auto type for variable declarations in structs"},
		{"global return", `program: [{return: {int: 1}}]`,
			diagnostics.ErrA007, "cannot return a value in global scope"},
		{"unknown function", `program: [{print: {call: {name: f, args: [{int: 1}, {float: 2}]}}}]`,
			diagnostics.ErrA008, "cannot resolve function f(int,float)"},
		{"no widening in overload resolution", `program:
  - func: {name: f, returns: float, params: [{name: a, type: float}], body: [{return: {ident: a}}]}
  - print: {call: {name: f, args: [{int: 1}]}}
`, diagnostics.ErrA008, "f(int)"},
		{"method sees only members", `program:
  - let: {name: g, type: int, value: {int: 1}}
  - struct:
      name: P
      members:
        - func: {name: f, returns: int, body: [{return: {ident: g}}]}
`, diagnostics.ErrA001, "cannot resolve identifier g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expectAnalyzerError(t, tt.doc, tt.code, tt.msg)
			if e.File != "check.yaml" {
				t.Errorf("expected file check.yaml, got %q", e.File)
			}
			if e.Token.Line == 0 {
				t.Errorf("error carries no position: %s", e.Error())
			}
		})
	}
}

func TestAnalyzerAccepts(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"widening declaration", `program: [{let: {name: x, type: float, value: {int: 1}}}]`},
		{"widening array initializer", `program:
  - let: {name: a, size: {int: 2}, type: float, value: {array: [{int: 1}, {int: 2}]}}
`},
		{"mixed numeric array", `program:
  - let: {name: a, size: {int: 2}, type: float, value: {array: [{int: 1}, {float: 2}]}}
`},
		{"string concatenation", `program:
  - print: {binary: {op: "+", left: {int: 1}, right: {string: "a"}}}
  - print: {binary: {op: "+", left: {string: "a"}, right: {char: "b"}}}
`},
		{"shadowing in block", `program:
  - let: {name: x, type: int, value: {int: 1}}
  - block: [{let: {name: x, type: string, value: {string: "s"}}}]
`},
		{"if-else returns", `program:
  - func:
      name: f
      returns: int
      params: [{name: b, type: bool}]
      body:
        - if: {cond: {ident: b}, then: [{return: {int: 1}}], else: [{block: [{return: {int: 2}}]}]}
`},
		{"recursion", `program:
  - func:
      name: f
      returns: int
      params: [{name: n, type: int}]
      body: [{return: {call: {name: f, args: [{ident: n}]}}}]
`},
		{"overloads", `program:
  - func: {name: f, returns: int, params: [{name: a, type: int}], body: [{return: {ident: a}}]}
  - func: {name: f, returns: float, params: [{name: a, type: float}], body: [{return: {ident: a}}]}
  - let: {name: x, type: int, value: {call: {name: f, args: [{int: 1}]}}}
  - let: {name: y, type: float, value: {call: {name: f, args: [{float: 1}]}}}
`},
		{"method call with caller arguments", `program:
  - struct:
      name: C
      members:
        - let: {name: n, type: int, value: {int: 0}}
        - func:
            name: add
            returns: int
            params: [{name: by, type: int}]
            body:
              - assign: {target: {ident: n}, value: {binary: {op: "+", left: {ident: n}, right: {ident: by}}}}
              - return: {ident: n}
  - let: {name: c, type: C}
  - let: {name: k, type: int, value: {int: 2}}
  - print: {method: {base: c, call: {name: add, args: [{ident: k}]}}}
  - assign: {target: {member: {base: c, name: n}}, value: {int: 5}}
`},
		{"struct arrays", `program:
  - struct: {name: P, members: [{let: {name: x, type: int}}]}
  - let: {name: ps, size: {int: 2}, type: P}
  - let: {name: q, type: P, value: {index: {name: ps, at: {int: 1}}}}
`},
		{"for loop scope", `program:
  - for:
      init: {let: {name: i, type: int, value: {int: 0}}}
      cond: {binary: {op: "<", left: {ident: i}, right: {int: 3}}}
      step: {assign: {target: {ident: i}, value: {binary: {op: "+", left: {ident: i}, right: {int: 1}}}}}
      body: [{print: {ident: i}}]
  - let: {name: i, type: string, value: {string: "free again"}}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectNoAnalyzerErrors(t, tt.doc)
		})
	}
}

func TestAutoResolution(t *testing.T) {
	program, a, errs := analyzeDoc(t, `program:
  - let: {name: x, type: auto, value: {float: 1.5}}
  - let: {name: y, type: auto}
  - assign: {target: {ident: y}, value: {string: "s"}}
  - let: {name: a, size: {int: 2}, type: "auto[]", value: {array: [{int: 1}, {int: 2}]}}
  - func: {name: f, returns: auto, body: [{return: {char: "c"}}]}
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected error: %v", errs[0])
	}

	got := make(map[string]string)
	for node, typ := range a.TypeMap {
		switch n := node.(type) {
		case *ast.VariableDeclaration:
			got[n.Name.Value] = typ.String()
		case *ast.FunctionDeclaration:
			got[n.Name.Value] = typ.String()
		}
	}
	want := map[string]string{"x": "float", "y": "string", "a": "int[]", "f": "char"}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	// Declarations resolved from an initializer and return types are fixed in place.
	x := program.Statements[0].(*ast.VariableDeclaration)
	if !typesystem.Equal(x.Type, typesystem.Float) {
		t.Errorf("x declared as %s", x.Type)
	}
	f := program.Statements[4].(*ast.FunctionDeclaration)
	if !typesystem.Equal(f.ReturnType, typesystem.Char) {
		t.Errorf("f returns %s", f.ReturnType)
	}
}

func TestFirstErrorOnly(t *testing.T) {
	_, _, errs := analyzeDoc(t, `program:
  - print: {ident: a}
  - print: {ident: b}
`)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	if got := errs[0].Error(); got != "check.yaml:2:20: [A001] cannot resolve identifier a" {
		t.Errorf("unexpected error %q", got)
	}
}

func TestSemanticAnalyzerProcessor(t *testing.T) {
	ctx := pipeline.NewPipelineContext(nil, "proc.yaml")
	program, err := astio.DecodeBytes([]byte(`program:
  - let: {name: x, type: auto, value: {int: 1}}
  - print: {ident: z}
`), "proc.yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ctx.AstRoot = program

	ctx = (&SemanticAnalyzerProcessor{}).Process(ctx)
	if !ctx.Failed() {
		t.Fatal("expected the processor to record an error")
	}
	if ctx.Errors[0].Code != diagnostics.ErrA001 || ctx.Errors[0].File != "proc.yaml" {
		t.Errorf("unexpected error %s", ctx.Errors[0].Error())
	}
	if len(ctx.TypeMap) != 1 {
		t.Errorf("expected the resolved slot of x to be exported, got %d entries", len(ctx.TypeMap))
	}
}

package evaluator

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/funvibe/tlang/internal/astio"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/typesystem"
)

// runProgram decodes an AST document and interprets it without checking.
func runProgram(t *testing.T, doc string, setup ...func(*Evaluator)) (string, Object, *Evaluator) {
	t.Helper()
	program, err := astio.DecodeBytes([]byte(doc), "test.yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var out bytes.Buffer
	e := New()
	e.Out = &out
	for _, fn := range setup {
		fn(e)
	}
	result := e.Eval(program)
	return out.String(), result, e
}

func expectOutput(t *testing.T, doc, want string) {
	t.Helper()
	out, result, _ := runProgram(t, doc)
	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}
	if out != want {
		t.Errorf("output mismatch\n got: %q\nwant: %q", out, want)
	}
}

func expectFault(t *testing.T, doc string, code diagnostics.ErrorCode, setup ...func(*Evaluator)) *Error {
	t.Helper()
	_, result, _ := runProgram(t, doc, setup...)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected runtime fault %s, got %v", code, result)
	}
	if errObj.Code != code {
		t.Fatalf("expected fault %s, got %s: %s", code, errObj.Code, errObj.Message)
	}
	return errObj
}

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"int", `program: [{print: {int: 42}}]`, "42\n"},
		{"negative int", `program: [{print: {unary: {op: "-", operand: {int: 7}}}}]`, "-7\n"},
		{"integral float", `program: [{print: {float: 3}}]`, "3.0\n"},
		{"float", `program: [{print: {float: 2.5}}]`, "2.5\n"},
		{"bool", `program: [{print: {bool: false}}]`, "false\n"},
		{"string", `program: [{print: {string: "hi there"}}]`, "hi there\n"},
		{"char", `program: [{print: {char: "z"}}]`, "z\n"},
		{"widened array", `program:
  - let: {name: a, size: {int: 3}, type: float, value: {array: [{int: 1}, {float: 2.5}, {int: 3}]}}
  - print: {ident: a}
`, "[1.0, 2.5, 3.0]\n"},
		{"unset slots", `program:
  - let: {name: a, size: {int: 2}, type: int}
  - assign: {target: {index: {name: a, at: {int: 1}}}, value: {int: 9}}
  - print: {ident: a}
`, "[<unset>, 9]\n"},
		{"struct instance", `program:
  - struct:
      name: Point
      members:
        - let: {name: x, type: int, value: {int: 0}}
        - let: {name: y, type: float}
  - let: {name: p, type: Point}
  - print: {ident: p}
`, "Point{x=0, y=<unset>}\n"},
		{"concatenation", `program:
  - print: {binary: {op: "+", left: {string: "n="}, right: {float: 1.5}}}
  - print: {binary: {op: "+", left: {char: "c"}, right: {string: "d"}}}
`, "n=1.5\ncd\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectOutput(t, tt.doc, tt.want)
		})
	}
}

func binaryDoc(op, left, right string) string {
	return `program: [{print: {binary: {op: "` + op + `", left: ` + left + `, right: ` + right + `}}}]`
}

func TestOperators(t *testing.T) {
	tests := []struct {
		op, left, right string
		want            string
	}{
		{"+", "{int: 2}", "{int: 3}", "5"},
		{"-", "{int: 2}", "{int: 3}", "-1"},
		{"*", "{int: 4}", "{int: 3}", "12"},
		{"/", "{int: 7}", "{int: 2}", "3"},
		{"/", "{int: 7}", "{float: 2}", "3.5"},
		{"/", "{float: 1}", "{float: 0}", "+Inf"},
		{"<", "{int: 1}", "{float: 1.5}", "true"},
		{">=", "{int: 2}", "{int: 2}", "true"},
		{"==", "{int: 2}", "{float: 2.0}", "true"},
		{"!=", "{bool: true}", "{bool: false}", "true"},
		{"<", "{string: \"abc\"}", "{string: \"abd\"}", "true"},
		{">", "{char: \"b\"}", "{char: \"a\"}", "true"},
		{"and", "{bool: true}", "{bool: false}", "false"},
		{"or", "{bool: false}", "{bool: true}", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.left+tt.op+tt.right, func(t *testing.T) {
			expectOutput(t, binaryDoc(tt.op, tt.left, tt.right), tt.want+"\n")
		})
	}
}

// An int operand behaves as the equal float on either side of an operator.
func TestWideningIsCommutative(t *testing.T) {
	outputOf := func(t *testing.T, doc string) string {
		t.Helper()
		out, result, _ := runProgram(t, doc)
		if isError(result) {
			t.Fatalf("unexpected error: %s", result.Inspect())
		}
		return out
	}
	for _, op := range []string{"+", "-", "*", "/", "==", "<"} {
		t.Run(op, func(t *testing.T) {
			if got, want := outputOf(t, binaryDoc(op, "{int: 3}", "{float: 1.5}")), outputOf(t, binaryDoc(op, "{float: 3.0}", "{float: 1.5}")); got != want {
				t.Errorf("int on the left: got %q, want %q", got, want)
			}
			if got, want := outputOf(t, binaryDoc(op, "{float: 1.5}", "{int: 3}")), outputOf(t, binaryDoc(op, "{float: 1.5}", "{float: 3.0}")); got != want {
				t.Errorf("int on the right: got %q, want %q", got, want)
			}
		})
	}
}

func TestShortCircuit(t *testing.T) {
	div := `{binary: {op: "==", left: {binary: {op: "/", left: {int: 1}, right: {int: 0}}}, right: {int: 1}}}`
	expectOutput(t, binaryDoc("and", "{bool: false}", div), "false\n")
	expectOutput(t, binaryDoc("or", "{bool: true}", div), "true\n")
}

func TestControlFlow(t *testing.T) {
	doc := `program:
  - let: {name: sum, type: int, value: {int: 0}}
  - for:
      init: {let: {name: i, type: int, value: {int: 0}}}
      cond: {binary: {op: "<", left: {ident: i}, right: {int: 5}}}
      step: {assign: {target: {ident: i}, value: {binary: {op: "+", left: {ident: i}, right: {int: 1}}}}}
      body:
        - assign: {target: {ident: sum}, value: {binary: {op: "+", left: {ident: sum}, right: {ident: i}}}}
  - print: {ident: sum}
  - while:
      cond: {binary: {op: ">", left: {ident: sum}, right: {int: 7}}}
      body:
        - assign: {target: {ident: sum}, value: {binary: {op: "-", left: {ident: sum}, right: {int: 2}}}}
  - print: {ident: sum}
  - if:
      cond: {binary: {op: "==", left: {ident: sum}, right: {int: 6}}}
      then: [{print: {string: "six"}}]
      else: [{print: {string: "other"}}]
  - block:
      - let: {name: sum, type: string, value: {string: "shadow"}}
      - print: {ident: sum}
  - print: {ident: sum}
`
	expectOutput(t, doc, "10\n6\nsix\nshadow\n6\n")
}

const factorialDoc = `program:
  - func:
      name: fact
      returns: int
      params: [{name: n, type: int}]
      body:
        - if:
            cond: {binary: {op: "<=", left: {ident: n}, right: {int: 1}}}
            then: [{return: {int: 1}}]
        - return: {binary: {op: "*", left: {ident: n}, right: {call: {name: fact, args: [{binary: {op: "-", left: {ident: n}, right: {int: 1}}}]}}}}
`

func TestRecursion(t *testing.T) {
	expectOutput(t, factorialDoc+`  - print: {call: {name: fact, args: [{int: 10}]}}
`, "3628800\n")
}

func TestRecursionLimit(t *testing.T) {
	doc := `program:
  - func:
      name: loop
      returns: int
      params: [{name: n, type: int}]
      body:
        - return: {call: {name: loop, args: [{binary: {op: "+", left: {ident: n}, right: {int: 1}}}]}}
  - print: {call: {name: loop, args: [{int: 0}]}}
`
	errObj := expectFault(t, doc, diagnostics.ErrR006, func(e *Evaluator) { e.MaxCallDepth = 50 })
	if len(errObj.StackTrace) != 50 {
		t.Errorf("expected 50 frames, got %d", len(errObj.StackTrace))
	}
}

func TestOverloads(t *testing.T) {
	doc := `program:
  - func:
      name: add
      returns: int
      params: [{name: a, type: int}, {name: b, type: int}]
      body: [{return: {binary: {op: "+", left: {ident: a}, right: {ident: b}}}}]
  - func:
      name: add
      returns: string
      params: [{name: a, type: string}, {name: b, type: string}]
      body: [{return: {binary: {op: "+", left: {ident: b}, right: {ident: a}}}}]
  - print: {call: {name: add, args: [{int: 1}, {int: 2}]}}
  - print: {call: {name: add, args: [{string: "a"}, {string: "b"}]}}
`
	expectOutput(t, doc, "3\nba\n")
}

func TestParameterWidening(t *testing.T) {
	doc := `program:
  - func:
      name: half
      returns: float
      params: [{name: x, type: float}]
      body: [{return: {binary: {op: "/", left: {ident: x}, right: {int: 2}}}}]
  - func:
      name: one
      returns: float
      body: [{return: {int: 1}}]
  - print: {call: {name: half, args: [{float: 3}]}}
  - print: {call: {name: one}}
`
	expectOutput(t, doc, "1.5\n1.0\n")
}

func TestFunctionsSeeGlobalsOnly(t *testing.T) {
	doc := `program:
  - let: {name: g, type: int, value: {int: 1}}
  - func:
      name: bump
      returns: int
      body:
        - assign: {target: {ident: g}, value: {binary: {op: "+", left: {ident: g}, right: {int: 1}}}}
        - return: {ident: g}
  - block:
      - let: {name: g, type: int, value: {int: 100}}
      - print: {call: {name: bump}}
      - print: {ident: g}
  - print: {ident: g}
`
	expectOutput(t, doc, "2\n100\n2\n")
}

const counterDoc = `program:
  - struct:
      name: Counter
      members:
        - let: {name: n, type: int, value: {int: 0}}
        - func:
            name: inc
            returns: int
            params: [{name: by, type: int}]
            body:
              - assign: {target: {ident: n}, value: {binary: {op: "+", left: {ident: n}, right: {ident: by}}}}
              - return: {ident: n}
`

func TestMethodCalls(t *testing.T) {
	doc := counterDoc + `  - let: {name: c, type: Counter}
  - let: {name: step, type: int, value: {int: 2}}
  - print: {method: {base: c, call: {name: inc, args: [{ident: step}]}}}
  - print: {method: {base: c, call: {name: inc, args: [{int: 3}]}}}
  - let: {name: d, type: Counter}
  - print: {member: {base: d, name: n}}
  - print: {member: {base: c, name: n}}
`
	expectOutput(t, doc, "2\n5\n0\n5\n")
}

// instanceState snapshots the members of a struct variable.
func instanceState(t *testing.T, e *Evaluator, name string) map[string]string {
	t.Helper()
	obj, ok := e.Globals().Get(name)
	if !ok {
		t.Fatalf("%s is not set", name)
	}
	inst, ok := obj.(*StructInstance)
	if !ok {
		t.Fatalf("%s is %T, not a struct instance", name, obj)
	}
	state := make(map[string]string)
	for _, field := range inst.Fields {
		if v, ok := inst.Env.Get(field); ok {
			state[field] = v.Inspect()
		} else {
			state[field] = unsetText
		}
	}
	return state
}

func TestStructValueIndependence(t *testing.T) {
	doc := counterDoc + `  - let: {name: a, type: Counter}
  - print: {method: {base: a, call: {name: inc, args: [{int: 4}]}}}
  - let: {name: b, type: Counter, value: {ident: a}}
  - print: {method: {base: b, call: {name: inc, args: [{int: 10}]}}}
  - let: {name: arr, size: {int: 2}, type: Counter}
  - assign: {target: {ident: a}, value: {ident: b}}
  - print: {method: {base: a, call: {name: inc, args: [{int: 1}]}}}
`
	out, result, e := runProgram(t, doc)
	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}
	if out != "4\n14\n15\n" {
		t.Errorf("unexpected output %q", out)
	}
	if diff := deep.Equal(instanceState(t, e, "a"), map[string]string{"n": "15"}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(instanceState(t, e, "b"), map[string]string{"n": "14"}); diff != nil {
		t.Error(diff)
	}

	arrObj, _ := e.Globals().Get("arr")
	arr := arrObj.(*Array)
	if arr.Elements[0] == arr.Elements[1] {
		t.Error("array slots share one instance")
	}
	if got := arr.Inspect(); got != "[Counter{n=0}, Counter{n=0}]" {
		t.Errorf("unexpected array %s", got)
	}
}

func TestArrayCopySemantics(t *testing.T) {
	doc := `program:
  - let: {name: a, size: {int: 2}, type: int, value: {array: [{int: 1}, {int: 2}]}}
  - let: {name: b, size: {int: 2}, type: int, value: {ident: a}}
  - assign: {target: {index: {name: b, at: {int: 0}}}, value: {int: 7}}
  - print: {ident: a}
  - print: {ident: b}
`
	expectOutput(t, doc, "[1, 2]\n[7, 2]\n")
}

func TestStructDeclarationRunsAgain(t *testing.T) {
	loop := `program:
  - let: {name: i, type: int, value: {int: 0}}
  - while:
      cond: {binary: {op: "<", left: {ident: i}, right: {int: 2}}}
      body:
        - struct: {name: P, members: [{let: {name: x, type: int, value: {int: 1}}}]}
        - let: {name: p, type: P}
        - print: {member: {base: p, name: x}}
        - assign: {target: {ident: i}, value: {binary: {op: "+", left: {ident: i}, right: {int: 1}}}}
`
	expectOutput(t, loop, "1\n1\n")

	calls := `program:
  - func:
      name: f
      returns: int
      body:
        - struct: {name: P, members: [{let: {name: x, type: int, value: {int: 7}}}]}
        - let: {name: p, type: P}
        - return: {member: {base: p, name: x}}
  - print: {call: {name: f}}
  - print: {call: {name: f}}
`
	expectOutput(t, calls, "7\n7\n")

	twice := `program:
  - struct: {name: P, members: [{let: {name: x, type: int}}]}
  - struct: {name: P, members: [{let: {name: y, type: int}}]}
`
	expectFault(t, twice, diagnostics.ErrR001)
}

func TestArrayAssignmentKeepsSize(t *testing.T) {
	doc := `program:
  - let: {name: a, size: {int: 2}, type: int}
  - assign: {target: {ident: a}, value: {array: [{int: 3}, {int: 4}]}}
  - print: {ident: a}
`
	expectOutput(t, doc, "[3, 4]\n")
}

func TestRuntimeFaults(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code diagnostics.ErrorCode
		msg  string
	}{
		{"uninitialized variable", `program:
  - let: {name: x, type: int}
  - print: {ident: x}
`, diagnostics.ErrR002, "x is not initialized"},
		{"uninitialized slot", `program:
  - let: {name: a, size: {int: 2}, type: int}
  - print: {index: {name: a, at: {int: 0}}}
`, diagnostics.ErrR002, "a[0] is not initialized"},
		{"uninitialized member", `program:
  - struct: {name: P, members: [{let: {name: x, type: int}}]}
  - let: {name: p, type: P}
  - print: {member: {base: p, name: x}}
`, diagnostics.ErrR002, "p.x is not initialized"},
		{"index too large", `program:
  - let: {name: a, size: {int: 2}, type: int}
  - assign: {target: {index: {name: a, at: {int: 2}}}, value: {int: 1}}
`, diagnostics.ErrR003, "index 2 out of bounds"},
		{"negative index", `program:
  - let: {name: a, size: {int: 2}, type: int, value: {array: [{int: 1}, {int: 2}]}}
  - print: {index: {name: a, at: {unary: {op: "-", operand: {int: 1}}}}}
`, diagnostics.ErrR003, "index -1 out of bounds"},
		{"negative size", `program:
  - let: {name: a, size: {unary: {op: "-", operand: {int: 1}}}, type: int}
`, diagnostics.ErrR004, "cannot be negative"},
		{"size mismatch", `program:
  - let: {name: a, size: {int: 3}, type: int, value: {array: [{int: 1}]}}
`, diagnostics.ErrR004, "initializer has 1 elements"},
		{"assigned array of another size", `program:
  - let: {name: a, size: {int: 2}, type: int}
  - assign: {target: {ident: a}, value: {array: [{int: 1}, {int: 2}, {int: 3}]}}
`, diagnostics.ErrR004, "array a has size 2, assigned value has 3 elements"},
		{"assigned array member of another size", `program:
  - struct: {name: P, members: [{let: {name: xs, size: {int: 1}, type: int}}]}
  - let: {name: p, type: P}
  - assign: {target: {member: {base: p, name: xs}}, value: {array: [{int: 1}, {int: 2}]}}
`, diagnostics.ErrR004, "array p.xs has size 1"},
		{"integer division by zero", `program:
  - print: {binary: {op: "/", left: {int: 1}, right: {int: 0}}}
`, diagnostics.ErrR005, "division by zero"},
		{"unregistered function", `program:
  - print: {call: {name: nope, args: [{int: 1}]}}
`, diagnostics.ErrI001, "nope(int)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errObj := expectFault(t, tt.doc, tt.code)
			if !strings.Contains(errObj.Message, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, errObj.Message)
			}
			if errObj.Line == 0 {
				t.Error("fault carries no position")
			}
		})
	}
}

// An auto return type is fixed by the first return that runs, and every
// later call is held to it.
func TestAutoReturnFixedByFirstCall(t *testing.T) {
	fn := `program:
  - func:
      name: pick
      returns: auto
      params: [{name: b, type: bool}]
      body:
        - if:
            cond: {ident: b}
            then: [{return: {int: 1}}]
            else: [{return: {float: 2.5}}]
`
	t.Run("float first widens later ints", func(t *testing.T) {
		doc := fn + `  - print: {call: {name: pick, args: [{bool: false}]}}
  - print: {call: {name: pick, args: [{bool: true}]}}
`
		expectOutput(t, doc, "2.5\n1.0\n")
	})

	t.Run("int first rejects later floats", func(t *testing.T) {
		doc := fn + `  - print: {call: {name: pick, args: [{bool: true}]}}
  - print: {call: {name: pick, args: [{bool: false}]}}
`
		out, result, _ := runProgram(t, doc)
		if out != "1\n" {
			t.Errorf("unexpected output %q", out)
		}
		errObj, ok := result.(*Error)
		if !ok || errObj.Code != diagnostics.ErrR001 {
			t.Fatalf("expected R001, got %v", result)
		}
		if !strings.Contains(errObj.Message, "returning type float, required int") {
			t.Errorf("unexpected message %q", errObj.Message)
		}
	})
}

func TestStackTrace(t *testing.T) {
	doc := `program:
  - func:
      name: inner
      returns: int
      params: [{name: x, type: int}]
      body: [{return: {binary: {op: "/", left: {ident: x}, right: {int: 0}}}}]
  - func:
      name: outer
      returns: int
      body: [{return: {call: {name: inner, args: [{int: 1}]}}}]
  - print: {call: {name: outer}}
`
	errObj := expectFault(t, doc, diagnostics.ErrR005)
	var names []string
	for _, frame := range errObj.StackTrace {
		names = append(names, frame.Name)
	}
	if diff := deep.Equal(names, []string{"outer()", "inner(int)"}); diff != nil {
		t.Error(diff)
	}
	if !strings.Contains(errObj.Inspect(), "called inner(int)") {
		t.Errorf("stack trace missing from %q", errObj.Inspect())
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := `program:
  - while: {cond: {bool: true}, body: []}
`
	errObj := expectFault(t, doc, diagnostics.ErrR001, func(e *Evaluator) { e.Context = ctx })
	if !strings.Contains(errObj.Message, "cancelled") {
		t.Errorf("unexpected message %q", errObj.Message)
	}
}

func TestTrace(t *testing.T) {
	var logs bytes.Buffer
	doc := factorialDoc + `  - print: {call: {name: fact, args: [{int: 2}]}}
`
	out, result, _ := runProgram(t, doc, func(e *Evaluator) {
		e.Trace = true
		e.RunID = "run-1"
		e.Logger = log.New(&logs, "", 0)
	})
	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}
	if out != "2\n" {
		t.Errorf("unexpected output %q", out)
	}
	for _, want := range []string{"[run-1] call fact(int)", "depth 2", "[run-1] return fact(int) = 2"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("trace missing %q:\n%s", want, logs.String())
		}
	}
}

func TestAutoVariables(t *testing.T) {
	doc := `program:
  - let: {name: x, type: auto}
  - assign: {target: {ident: x}, value: {float: 1.5}}
  - let: {name: a, size: {int: 2}, type: auto}
  - assign: {target: {index: {name: a, at: {int: 0}}}, value: {string: "s"}}
  - assign: {target: {index: {name: a, at: {int: 1}}}, value: {string: "t"}}
  - print: {ident: x}
  - print: {ident: a}
`
	out, result, e := runProgram(t, doc)
	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}
	if out != "1.5\n[s, t]\n" {
		t.Errorf("unexpected output %q", out)
	}
	var resolved []string
	for _, typ := range e.TypeMap {
		resolved = append(resolved, typ.String())
	}
	if len(resolved) != 2 {
		t.Errorf("expected 2 resolved slots, got %v", resolved)
	}
	if sym, _ := e.Globals().vars.Lookup("x"); sym.Type != typesystem.Float {
		t.Errorf("expected x bound to float, got %s", sym.Type)
	}
	if sym, _ := e.Globals().vars.Lookup("a"); sym.Type.String() != "string[]" {
		t.Errorf("expected a bound to string[], got %s", sym.Type)
	}
}

func TestStructFieldOrder(t *testing.T) {
	doc := `program:
  - struct:
      name: P
      members:
        - let: {name: z, type: int, value: {int: 1}}
        - func: {name: get, returns: int, body: [{return: {ident: z}}]}
        - let: {name: a, type: string}
  - let: {name: p, type: P}
  - print: {ident: p}
`
	expectOutput(t, doc, "P{z=1, a=<unset>}\n")
}

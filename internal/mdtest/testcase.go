// Package mdtest extracts golden test programs from Markdown documents.
//
// A test starts at a heading "Test: <name>". It holds exactly one yaml
// fence with the AST document, followed by one or more assertion fences:
//
//	output         exact text the program prints
//	check-error    text the first checker diagnostic must contain
//	runtime-error  text the runtime fault must contain
//
// Code blocks without a language are treated as prose.
package mdtest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ProgramFence is the fence language of the program under test.
const ProgramFence = "yaml"

const testHeadingPrefix = "Test: "

// AssertionType is the fence language of an assertion.
type AssertionType string

const (
	AssertionOutput       AssertionType = "output"
	AssertionCheckError   AssertionType = "check-error"
	AssertionRuntimeError AssertionType = "runtime-error"
)

// Assertion is a single expectation of a test case.
type Assertion struct {
	Type    AssertionType
	Content string // Raw for output, trimmed otherwise
	Line    int
}

// TestCase is one test extracted from a Markdown document.
type TestCase struct {
	Name       string
	Program    string
	Line       int // Line of the program fence
	Assertions []Assertion
}

// Expects returns the first assertion of type t.
func (tc *TestCase) Expects(t AssertionType) (Assertion, bool) {
	for _, a := range tc.Assertions {
		if a.Type == t {
			return a, true
		}
	}
	return Assertion{}, false
}

// ExtractFile reads path and extracts its test cases.
func ExtractFile(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cases, err := Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its test cases in order.
func Extract(source []byte) ([]TestCase, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, testHeadingPrefix) {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &TestCase{Name: strings.TrimSpace(strings.TrimPrefix(heading, testHeadingPrefix))}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			if language == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, source)
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", line, language)
			}
			content := blockContent(n, source)

			switch {
			case language == ProgramFence:
				if current.Program != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple program fences in test '%s'", line, current.Name)
				}
				current.Program = content
				current.Line = line
			case isAssertion(language):
				a := Assertion{Type: AssertionType(language), Content: content, Line: line}
				if a.Type != AssertionOutput {
					a.Content = strings.TrimSpace(content)
				}
				current.Assertions = append(current.Assertions, a)
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func isAssertion(language string) bool {
	switch AssertionType(language) {
	case AssertionOutput, AssertionCheckError, AssertionRuntimeError:
		return true
	}
	return false
}

func validate(tc *TestCase) error {
	if strings.TrimSpace(tc.Program) == "" {
		return fmt.Errorf("test '%s' has no %s fence", tc.Name, ProgramFence)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	_, check := tc.Expects(AssertionCheckError)
	_, runtime := tc.Expects(AssertionRuntimeError)
	if check && runtime {
		return fmt.Errorf("test '%s' expects both a check error and a runtime error", tc.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of the first content line of node.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}

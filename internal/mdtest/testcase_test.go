package mdtest

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractBasic(t *testing.T) {
	markdown := `# Printing

## Test: print an int
` + fence + `yaml
program: [{print: {int: 1}}]
` + fence + `
` + fence + `output
1
` + fence + `

## Test: undeclared
Some prose in between.
` + fence + `yaml
program: [{print: {ident: x}}]
` + fence + `
` + fence + `check-error
[A001] cannot resolve identifier x
` + fence + `
`

	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	tc1 := cases[0]
	be.Equal(t, tc1.Name, "print an int")
	be.Equal(t, tc1.Program, "program: [{print: {int: 1}}]\n")
	be.Equal(t, tc1.Line, 5)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionOutput)
	be.Equal(t, tc1.Assertions[0].Content, "1\n")

	tc2 := cases[1]
	be.Equal(t, tc2.Name, "undeclared")
	a, ok := tc2.Expects(AssertionCheckError)
	be.True(t, ok)
	be.Equal(t, a.Content, "[A001] cannot resolve identifier x")
	_, ok = tc2.Expects(AssertionOutput)
	be.True(t, !ok)
}

func TestExtractEmptyOutput(t *testing.T) {
	markdown := `## Test: silent
` + fence + `yaml
program: []
` + fence + `
` + fence + `output
` + fence + `
`
	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, cases[0].Assertions[0].Content, "")
}

func TestExtractIgnoresPlainBlocks(t *testing.T) {
	markdown := "Intro\n\n" + fence + "\nnot a test\n" + fence + "\n\n## Other heading\n"
	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 0)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "fence outside test",
			markdown: fence + "yaml\nprogram: []\n" + fence + "\n",
			want:     "line 2: yaml fence found outside of test case",
		},
		{
			name: "unknown fence",
			markdown: "## Test: t\n" + fence + "yaml\nprogram: []\n" + fence + "\n" +
				fence + "stdout\n1\n" + fence + "\n",
			want: "unknown fence language 'stdout' in test 't'",
		},
		{
			name:     "missing program",
			markdown: "## Test: t\n" + fence + "output\n1\n" + fence + "\n",
			want:     "test 't' has no yaml fence",
		},
		{
			name:     "missing assertion",
			markdown: "## Test: t\n" + fence + "yaml\nprogram: []\n" + fence + "\n",
			want:     "test 't' has no assertion fences",
		},
		{
			name: "two programs",
			markdown: "## Test: t\n" + fence + "yaml\nprogram: []\n" + fence + "\n" +
				fence + "yaml\nprogram: []\n" + fence + "\n",
			want: "multiple program fences in test 't'",
		},
		{
			name: "check and runtime error",
			markdown: "## Test: t\n" + fence + "yaml\nprogram: []\n" + fence + "\n" +
				fence + "check-error\nA001\n" + fence + "\n" +
				fence + "runtime-error\nR001\n" + fence + "\n",
			want: "expects both a check error and a runtime error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.markdown))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			be.True(t, strings.Contains(err.Error(), tt.want))
		})
	}
}

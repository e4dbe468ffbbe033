package backend_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/funvibe/tlang/internal/analyzer"
	"github.com/funvibe/tlang/internal/astio"
	"github.com/funvibe/tlang/internal/backend"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/mdtest"
	"github.com/funvibe/tlang/internal/pipeline"
)

// FuzzPipeline feeds arbitrary AST documents through the whole pipeline.
// Nothing may panic, and a program the checker accepted may fail only with
// a runtime fault, never with an internal one.
func FuzzPipeline(f *testing.F) {
	files, err := filepath.Glob("../mdtest/testdata/*.md")
	if err != nil {
		f.Fatal(err)
	}
	for _, file := range files {
		cases, err := mdtest.ExtractFile(file)
		if err != nil {
			f.Fatal(err)
		}
		for _, tc := range cases {
			f.Add([]byte(tc.Program))
		}
	}
	f.Add([]byte("program: []"))
	f.Add([]byte(`program: [{while: {cond: {bool: true}, body: []}}]`))

	f.Fuzz(func(t *testing.T, data []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		pctx := pipeline.NewPipelineContext(data, "fuzz.yaml")
		pctx.Context = ctx
		pctx.Out = io.Discard
		pctx.Config.MaxCallDepth = 200

		pctx = pipeline.New(
			&astio.DecoderProcessor{},
			&analyzer.SemanticAnalyzerProcessor{},
			backend.NewExecutionProcessor(backend.NewTreeWalk()),
		).Run(pctx)

		for _, diag := range pctx.Errors {
			if diag.Code == diagnostics.ErrI001 {
				t.Fatalf("internal fault on a checked program: %s\n%s", diag.Error(), data)
			}
		}
	})
}

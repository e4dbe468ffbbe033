package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/config"
	"github.com/funvibe/tlang/internal/diagnostics"
)

// PipelineContext carries the state shared by all processors of one run.
type PipelineContext struct {
	// Context cancels execution between statements. Defaults to context.Background().
	Context context.Context

	SourceCode []byte // AST document
	FilePath   string

	AstRoot *ast.Program
	Errors  []*diagnostics.DiagnosticError

	// TypeMap holds the types the checker resolved for auto slots.
	TypeMap ast.TypeMap

	// Out receives program output. Defaults to os.Stdout.
	Out io.Writer

	// RunID tags trace output of this run.
	RunID string

	Config *config.Config
}

// NewPipelineContext prepares a context for source read from path.
func NewPipelineContext(source []byte, path string) *PipelineContext {
	return &PipelineContext{
		Context:    context.Background(),
		SourceCode: source,
		FilePath:   path,
		TypeMap:    make(ast.TypeMap),
		Out:        os.Stdout,
		RunID:      uuid.NewString(),
		Config:     config.DefaultConfig(),
	}
}

// AddError records a diagnostic, filling in the file when missing.
func (c *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = c.FilePath
	}
	c.Errors = append(c.Errors, err)
}

// Failed reports whether any processor recorded a diagnostic.
func (c *PipelineContext) Failed() bool {
	return len(c.Errors) > 0
}

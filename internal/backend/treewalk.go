package backend

import (
	"fmt"
	"log"

	"github.com/funvibe/tlang/internal/evaluator"
	"github.com/funvibe/tlang/internal/pipeline"
)

// TreeWalkBackend wraps the tree-walk interpreter
type TreeWalkBackend struct {
	// Logger receives trace output. Nil keeps the evaluator's default.
	Logger *log.Logger

	// Evaluator is the interpreter of the last run, kept for inspection.
	Evaluator *evaluator.Evaluator
}

// NewTreeWalk creates a new tree-walk backend
func NewTreeWalk() *TreeWalkBackend {
	return &TreeWalkBackend{}
}

// Run executes the program using tree-walk interpretation
func (b *TreeWalkBackend) Run(ctx *pipeline.PipelineContext) (evaluator.Object, error) {
	if ctx.AstRoot == nil {
		return nil, fmt.Errorf("no AST to execute")
	}
	if len(ctx.Errors) > 0 {
		return nil, ctx.Errors[0]
	}

	eval := evaluator.New()
	eval.Context = ctx.Context
	eval.RunID = ctx.RunID
	if ctx.Out != nil {
		eval.Out = ctx.Out
	}
	if ctx.Config != nil {
		eval.MaxCallDepth = ctx.Config.MaxCallDepth
		eval.Trace = ctx.Config.Trace
	}
	if b.Logger != nil {
		eval.Logger = b.Logger
	}
	if ctx.FilePath != "" {
		eval.CurrentFile = ctx.FilePath
	} else {
		eval.CurrentFile = "<stdin>"
	}
	b.Evaluator = eval

	return eval.Eval(ctx.AstRoot), nil
}

// Name returns the backend name
func (b *TreeWalkBackend) Name() string {
	return "tree-walk"
}

package backend

import (
	"fmt"
	"strings"

	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/evaluator"
	"github.com/funvibe/tlang/internal/pipeline"
	"github.com/funvibe/tlang/internal/token"
)

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	result, err := p.Backend.Run(ctx)
	if err != nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrI001, token.Token{}, "%s: %v", p.Backend.Name(), err))
		return ctx
	}

	if errObj, ok := result.(*evaluator.Error); ok {
		ctx.AddError(p.toDiagnostic(ctx, errObj))
	}
	return ctx
}

// toDiagnostic converts a runtime fault, keeping its stack trace in the
// message with the innermost call first.
func (p *ExecutionProcessor) toDiagnostic(ctx *pipeline.PipelineContext, err *evaluator.Error) *diagnostics.DiagnosticError {
	tok := token.Token{Line: err.Line, Column: err.Column}
	var msg strings.Builder
	msg.WriteString(err.Message)

	if len(err.StackTrace) > 0 {
		msg.WriteString("\nStack trace:")
		for i := len(err.StackTrace) - 1; i >= 0; i-- {
			frame := err.StackTrace[i]
			file := frame.File
			if file == "" {
				file = ctx.FilePath
			}
			fmt.Fprintf(&msg, "\n  at %s:%d:%d (called %s)", file, frame.Line, frame.Column, frame.Name)
		}
	}

	code := err.Code
	if code == "" {
		code = diagnostics.ErrR001
	}
	return diagnostics.NewError(code, tok, "%s", msg.String())
}

package astio

import (
	"errors"

	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/pipeline"
	"github.com/funvibe/tlang/internal/token"
)

// DecoderProcessor is the first pipeline stage: it turns ctx.SourceCode
// into ctx.AstRoot.
type DecoderProcessor struct{}

func (dp *DecoderProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	prog, err := DecodeBytes(ctx.SourceCode, ctx.FilePath)
	if err != nil {
		var diag *diagnostics.DiagnosticError
		if !errors.As(err, &diag) {
			diag = diagnostics.NewError(diagnostics.ErrD001, token.Token{}, "%s", err.Error())
		}
		ctx.AddError(diag)
		return ctx
	}
	ctx.AstRoot = prog
	return ctx
}

package analyzer

import (
	"github.com/funvibe/tlang/internal/pipeline"
)

// SemanticAnalyzerProcessor runs the checker over ctx.AstRoot and exports
// the resolved auto slots in ctx.TypeMap.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}

	analyzer := New()
	analyzer.File = ctx.FilePath
	if ctx.TypeMap != nil {
		analyzer.TypeMap = ctx.TypeMap
	}

	errors := analyzer.Analyze(ctx.AstRoot)
	ctx.TypeMap = analyzer.TypeMap // Export resolved types to context

	for _, err := range errors {
		ctx.AddError(err)
	}
	return ctx
}

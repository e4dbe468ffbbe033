// Package backend runs a checked program. The tree-walk interpreter is the
// only backend; the interface keeps the pipeline independent of it.
package backend

import (
	"github.com/funvibe/tlang/internal/evaluator"
	"github.com/funvibe/tlang/internal/pipeline"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run executes the program from pipeline context. A runtime fault is
	// returned as an *evaluator.Error result, not as err.
	Run(ctx *pipeline.PipelineContext) (evaluator.Object, error)

	// Name returns the backend name for display
	Name() string
}

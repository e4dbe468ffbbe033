// Package tlang embeds the tlang checker and interpreter in Go programs.
//
//	rt := tlang.New(tlang.WithMaxCallDepth(500))
//	prog, err := rt.LoadFile("prog.yaml")
//	...
//	out, err := rt.Run(ctx, prog)
//	total, err := rt.Get("total")
//
// Errors returned by Load, Check, Run and Call are *Diagnostic values
// unless they come from reading the input.
package tlang

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/funvibe/tlang/internal/analyzer"
	"github.com/funvibe/tlang/internal/ast"
	"github.com/funvibe/tlang/internal/astio"
	"github.com/funvibe/tlang/internal/backend"
	"github.com/funvibe/tlang/internal/config"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/evaluator"
	"github.com/funvibe/tlang/internal/pipeline"
	"github.com/funvibe/tlang/internal/token"
)

// Diagnostic is a checker or runtime error with its source position.
type Diagnostic = diagnostics.DiagnosticError

// Config holds the interpreter settings a Runtime runs with.
type Config = config.Config

// DefaultConfig returns the settings used when no option overrides them.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig reads a tlang.yaml or tlang.toml file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput copies program output to w in addition to the string Run returns.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) { r.out = w }
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(r *Runtime) { r.config = cfg }
}

// WithMaxCallDepth bounds nested calls.
func WithMaxCallDepth(n int) Option {
	return func(r *Runtime) { r.config.MaxCallDepth = n }
}

// WithTrace logs every call made by the interpreter to logger.
func WithTrace(logger *log.Logger) Option {
	return func(r *Runtime) {
		r.config.Trace = true
		r.logger = logger
	}
}

// Runtime loads, checks and runs programs. Globals of the last run stay
// available to Get and Call.
type Runtime struct {
	config     *Config
	out        io.Writer
	logger     *log.Logger
	marshaller *Marshaller

	eval *evaluator.Evaluator
	buf  *bytes.Buffer
}

// Program is a decoded AST document.
type Program struct {
	File    string
	root    *ast.Program
	typeMap ast.TypeMap
	checked bool
}

// New creates a runtime with the default configuration.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		config:     config.DefaultConfig(),
		marshaller: NewMarshaller(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load decodes an AST document read from src.
func (r *Runtime) Load(src io.Reader) (*Program, error) {
	return r.load(src, "<embed>")
}

// LoadFile decodes the AST document stored at path.
func (r *Runtime) LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.load(f, path)
}

func (r *Runtime) load(src io.Reader, file string) (*Program, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	ctx := r.newContext(context.Background(), data, file)
	ctx = (&astio.DecoderProcessor{}).Process(ctx)
	if ctx.Failed() {
		return nil, ctx.Errors[0]
	}
	return &Program{File: file, root: ctx.AstRoot}, nil
}

// Check runs the static checker. Run calls it for programs not checked yet.
func (r *Runtime) Check(prog *Program) error {
	ctx := r.newContext(context.Background(), nil, prog.File)
	ctx.AstRoot = prog.root
	ctx = (&analyzer.SemanticAnalyzerProcessor{}).Process(ctx)
	if ctx.Failed() {
		return ctx.Errors[0]
	}
	prog.typeMap = ctx.TypeMap
	prog.checked = true
	return nil
}

// Run checks and interprets prog and returns everything it printed. On a
// runtime fault the output printed before it is returned with the error.
func (r *Runtime) Run(ctx context.Context, prog *Program) (string, error) {
	if !prog.checked {
		if err := r.Check(prog); err != nil {
			return "", err
		}
	}

	r.buf = &bytes.Buffer{}
	pctx := r.newContext(ctx, nil, prog.File)
	pctx.AstRoot = prog.root
	pctx.TypeMap = prog.typeMap

	tw := backend.NewTreeWalk()
	tw.Logger = r.logger
	pctx = backend.NewExecutionProcessor(tw).Process(pctx)
	r.eval = tw.Evaluator

	if pctx.Failed() {
		return r.buf.String(), pctx.Errors[0]
	}
	return r.buf.String(), nil
}

// Get returns the value of a global variable of the last run.
func (r *Runtime) Get(name string) (interface{}, error) {
	if r.eval == nil {
		return nil, fmt.Errorf("no program has run")
	}
	obj, ok := r.eval.Globals().Get(name)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found or not initialized", name)
	}
	return r.marshaller.FromValue(obj)
}

// Call calls a global function of the last run. Go ints select int
// parameters and Go floats select float parameters; there is no widening
// across overloads.
func (r *Runtime) Call(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	if r.eval == nil {
		return nil, fmt.Errorf("no program has run")
	}

	objs := make([]evaluator.Object, len(args))
	for i, arg := range args {
		obj, err := r.marshaller.ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		objs[i] = obj
	}

	r.eval.Context = ctx
	result := r.eval.Call(name, objs...)
	if errObj, ok := result.(*evaluator.Error); ok {
		code := errObj.Code
		if code == "" {
			code = diagnostics.ErrR001
		}
		diag := diagnostics.NewError(code, token.Token{Line: errObj.Line, Column: errObj.Column}, "%s", errObj.Message)
		diag.File = r.eval.CurrentFile
		return nil, diag
	}
	return r.marshaller.FromValue(result)
}

// Output returns everything printed since the last Run, including output
// of later calls.
func (r *Runtime) Output() string {
	if r.buf == nil {
		return ""
	}
	return r.buf.String()
}

func (r *Runtime) newContext(ctx context.Context, source []byte, file string) *pipeline.PipelineContext {
	pctx := pipeline.NewPipelineContext(source, file)
	pctx.Context = ctx
	pctx.Config = r.config
	if r.buf != nil {
		pctx.Out = r.buf
		if r.out != nil {
			pctx.Out = io.MultiWriter(r.buf, r.out)
		}
	}
	return pctx
}

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/tlang/internal/analyzer"
	"github.com/funvibe/tlang/internal/astio"
	"github.com/funvibe/tlang/internal/backend"
	"github.com/funvibe/tlang/internal/config"
	"github.com/funvibe/tlang/internal/diagnostics"
	"github.com/funvibe/tlang/internal/pipeline"
	"github.com/funvibe/tlang/internal/prettyprinter"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const (
	colorRed   = "\x1b[31m"
	colorBold  = "\x1b[1m"
	colorReset = "\x1b[0m"
)

const stdinName = "<stdin>"

// options are the parsed command line flags.
type options struct {
	check      bool
	print      bool
	trace      bool
	version    bool
	configPath string
	file       string
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("tlang", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.check, "check", false, "only run the static checker")
	fs.BoolVar(&opts.print, "print", false, "print the program as source text instead of running it")
	fs.BoolVar(&opts.trace, "trace", false, "log every function call to stderr")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.StringVar(&opts.configPath, "config", "", "config file (default: nearest "+config.YAMLConfigFile+" or "+config.TOMLConfigFile+")")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tlang [flags] [program%s]\n\nReads the AST document from stdin when no file is given.\n\nFlags:\n", config.SourceFileExt)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		opts.file = fs.Arg(0)
	default:
		fs.Usage()
		return nil, fmt.Errorf("expected at most one program, got %d", fs.NArg())
	}
	return opts, nil
}

// readInput reads the program from the named file, or from stdin when no
// file is given. A terminal on stdin is a usage error.
func readInput(opts *options, stdin io.Reader) ([]byte, string, error) {
	if opts.file == "" {
		if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return nil, "", fmt.Errorf("usage: tlang <file> or pipe an AST document from stdin")
		}
		input, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return input, stdinName, nil
	}

	if !isSourceFile(opts.file) {
		return nil, "", fmt.Errorf("%s: expected one of %s", opts.file, strings.Join(config.SourceFileExtensions, ", "))
	}
	input, err := os.ReadFile(opts.file)
	if err != nil {
		return nil, "", fmt.Errorf("reading input: %w", err)
	}
	return input, opts.file, nil
}

// loadConfig reads the -config file, or searches upward from the program's
// directory.
func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}
	dir := "."
	if opts.file != "" {
		dir = filepath.Dir(opts.file)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	cfg, _, err := config.FindAndLoad(abs)
	return cfg, err
}

// useColor decides whether diagnostics written to w are colored.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatDiagnostic renders one diagnostic; runtime faults keep their
// stack trace lines.
func formatDiagnostic(err *diagnostics.DiagnosticError, color bool) string {
	text := err.Error()
	if !color {
		return text
	}
	head, rest, _ := strings.Cut(text, "\n")
	tag := "[" + string(err.Code) + "]"
	head = strings.Replace(head, tag, colorBold+colorRed+tag+colorReset+colorBold, 1) + colorReset
	if rest == "" {
		return head
	}
	return head + "\n" + rest
}

func buildPipeline(opts *options, logger *log.Logger) *pipeline.Pipeline {
	processors := []pipeline.Processor{&astio.DecoderProcessor{}}
	if opts.print && !opts.check {
		return pipeline.New(processors...)
	}
	processors = append(processors, &analyzer.SemanticAnalyzerProcessor{})
	if opts.check || opts.print {
		return pipeline.New(processors...)
	}

	tw := backend.NewTreeWalk()
	tw.Logger = logger
	processors = append(processors, backend.NewExecutionProcessor(tw))
	return pipeline.New(processors...)
}

// Main runs the command line and returns the process exit code.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	logger := log.New(stderr, "tlang: ", 0)

	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			logger.Printf("internal error: %v", r)
			logger.Print("This is a bug. Please report it.")
			code = exitFailure
		}
	}()

	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		logger.Print(err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, "tlang "+config.Version)
		return exitOK
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		logger.Print(err)
		return exitFailure
	}
	if opts.trace {
		cfg.Trace = true
	}

	source, file, err := readInput(opts, stdin)
	if err != nil {
		logger.Print(err)
		return exitUsage
	}

	ctx := pipeline.NewPipelineContext(source, file)
	ctx.Out = stdout
	ctx.Config = cfg
	ctx = buildPipeline(opts, logger).Run(ctx)

	if ctx.Failed() {
		color := useColor(cfg.Color, stderr)
		for _, diag := range ctx.Errors {
			fmt.Fprintln(stderr, formatDiagnostic(diag, color))
		}
		return exitFailure
	}

	if opts.print {
		fmt.Fprint(stdout, prettyprinter.Print(ctx.AstRoot))
	}
	return exitOK
}

// Run is the entry point of cmd/tlang.
func Run() {
	os.Exit(Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

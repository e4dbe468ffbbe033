package config

// SourceFileExt is the extension of AST documents produced by the tlang parser.
const SourceFileExt = ".tlang.yaml"

// SourceFileExtensions are all recognized AST document extensions
var SourceFileExtensions = []string{".tlang.yaml", ".yaml", ".yml"}

// Version is reported by tlang -version.
const Version = "0.3.0"

// Primitive and placeholder type names (lexical forms)
const (
	IntTypeName    = "int"
	FloatTypeName  = "float"
	BoolTypeName   = "bool"
	StringTypeName = "string"
	CharTypeName   = "char"
	AutoTypeName   = "auto"

	// ArraySuffix turns an element type lexeme into an array lexeme: int -> int[]
	ArraySuffix = "[]"
)

// Operator lexemes
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
	OpDiv = "/"
	OpEq  = "=="
	OpNe  = "!="
	OpLt  = "<"
	OpGt  = ">"
	OpLe  = "<="
	OpGe  = ">="
	OpAnd = "and"
	OpOr  = "or"
	OpNot = "not"
)

// Keywords used by the pretty printer
const (
	LetKeyword    = "let"
	PrintKeyword  = "print"
	ReturnKeyword = "return"
	IfKeyword     = "if"
	ElseKeyword   = "else"
	WhileKeyword  = "while"
	ForKeyword    = "for"
	StructKeyword = "tlstruct"
	FuncKeyword   = "ff"
)

// DefaultMaxCallDepth bounds interpreter recursion so runaway programs
// fail with a runtime fault instead of overflowing the Go stack.
const DefaultMaxCallDepth = 10000

// Config file names searched by FindAndLoad, in priority order
const (
	YAMLConfigFile = "tlang.yaml"
	TOMLConfigFile = "tlang.toml"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

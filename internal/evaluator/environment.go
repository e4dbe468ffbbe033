package evaluator

import (
	"github.com/funvibe/tlang/internal/symbols"
)

// Environment is the pair of tables a piece of code runs against: the
// program's global tables, a function call frame, or a struct instance.
type Environment struct {
	vars  *symbols.VariableTable
	funcs *symbols.FunctionTable
}

// NewEnvironment returns an environment with one open scope.
func NewEnvironment() *Environment {
	env := &Environment{
		vars:  symbols.NewVariableTable(),
		funcs: symbols.NewFunctionTable(),
	}
	env.push()
	return env
}

func (env *Environment) push() {
	env.vars.PushScope()
	env.funcs.PushScope()
}

func (env *Environment) pop() error {
	if err := env.vars.PopScope(); err != nil {
		return err
	}
	return env.funcs.PopScope()
}

// Clone deep-copies both tables.
func (env *Environment) Clone() *Environment {
	return &Environment{vars: env.vars.Clone(), funcs: env.funcs.Clone()}
}

// frame returns a call frame over the root scope of env: function bodies
// see globals (or struct members), never the caller's locals.
func (env *Environment) frame() *Environment {
	return &Environment{vars: env.vars.Base(1), funcs: env.funcs.Base(1)}
}

// Get returns the value stored under name, if any.
func (env *Environment) Get(name string) (Object, bool) {
	sym, ok := env.vars.Lookup(name)
	if !ok || !sym.HasValue() {
		return nil, false
	}
	obj, ok := sym.Value.(Object)
	return obj, ok
}

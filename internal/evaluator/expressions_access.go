package evaluator

import (
	"github.com/funvibe/tlang/internal/ast"
)

func (e *Evaluator) evalMember(node *ast.StructVariableSelector) Object {
	inst, errObj := e.instanceOf(node.Base)
	if errObj != nil {
		return errObj
	}
	member, ok := inst.Env.vars.Lookup(node.Member.Value)
	if !ok {
		return e.newError(errRuntime, node.Member, "struct %s has no member %s", inst.TypeName, node.Member.Value)
	}
	if !member.HasValue() {
		return e.newError(errUninitialized, node, "%s.%s is not initialized", node.Base.Value, node.Member.Value)
	}
	return member.Value.(Object)
}

// evalMethodCall evaluates the arguments in the caller's scope, then runs
// the method against the instance's own tables.
func (e *Evaluator) evalMethodCall(node *ast.StructFunctionSelector) Object {
	inst, errObj := e.instanceOf(node.Base)
	if errObj != nil {
		return errObj
	}
	args, errObj := e.evalArgs(node.Call.Arguments)
	if errObj != nil {
		return errObj
	}
	return e.callFunction(node.Call, args, inst.Env)
}

func (e *Evaluator) instanceOf(base *ast.Identifier) (*StructInstance, *Error) {
	sym, ok := e.env.vars.Lookup(base.Value)
	if !ok {
		return nil, e.newError(errRuntime, base, "cannot resolve variable %s", base.Value)
	}
	if !sym.HasValue() {
		return nil, e.newError(errUninitialized, base, "variable %s is not initialized", base.Value)
	}
	inst, ok := sym.Value.(*StructInstance)
	if !ok {
		return nil, e.newError(errRuntime, base, "%s is not a struct, got type %s", base.Value, sym.Type)
	}
	return inst, nil
}

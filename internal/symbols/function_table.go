package symbols

import "github.com/funvibe/tlang/internal/ast"

// FunctionTable is a stack of scopes mapping signature keys to declarations.
type FunctionTable struct {
	scopes []map[string]*ast.FunctionDeclaration
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{}
}

func (t *FunctionTable) PushScope() {
	t.scopes = append(t.scopes, make(map[string]*ast.FunctionDeclaration))
}

func (t *FunctionTable) PopScope() error {
	if len(t.scopes) == 0 {
		return ErrNoScope
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

func (t *FunctionTable) Depth() int {
	return len(t.scopes)
}

// Register adds decl under key in the innermost scope.
func (t *FunctionTable) Register(key string, decl *ast.FunctionDeclaration) error {
	if len(t.scopes) == 0 {
		return ErrNoScope
	}
	scope := t.scopes[len(t.scopes)-1]
	if _, exists := scope[key]; exists {
		return ErrDuplicate
	}
	scope[key] = decl
	return nil
}

// LookupSignature resolves key from the innermost scope outwards.
func (t *FunctionTable) LookupSignature(key string) (*ast.FunctionDeclaration, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if decl, ok := t.scopes[i][key]; ok {
			return decl, true
		}
	}
	return nil, false
}

// Clone copies the scope stack. Declarations are shared: they belong to the AST.
func (t *FunctionTable) Clone() *FunctionTable {
	clone := &FunctionTable{scopes: make([]map[string]*ast.FunctionDeclaration, len(t.scopes))}
	for i, scope := range t.scopes {
		copied := make(map[string]*ast.FunctionDeclaration, len(scope))
		for k, v := range scope {
			copied[k] = v
		}
		clone.scopes[i] = copied
	}
	return clone
}

// SignatureKey is the mangled key of a declaration, built from its parameter types.
func SignatureKey(decl *ast.FunctionDeclaration) string {
	return Mangle(decl.Name.Value, decl.ParameterTypes()...)
}

// Base returns a table sharing the outermost n scopes with t.
func (t *FunctionTable) Base(n int) *FunctionTable {
	if n > len(t.scopes) {
		n = len(t.scopes)
	}
	scopes := make([]map[string]*ast.FunctionDeclaration, n, n+4)
	copy(scopes, t.scopes[:n])
	return &FunctionTable{scopes: scopes}
}

package core

// Env is a persistent, immutable scope chain: a linked list of (name,
// DVal) frames, innermost first. This is the "higher-order environment
// → persistent scope chain" design noted in spec.md §9: a linked
// immutable structure of frames is clearer and faster than a chain of
// closures while preserving lookup/shadowing semantics.
type Env struct {
	parent *Env
	names  map[string]DVal
}

// NewEnv returns the empty root environment (eval.GlobalEnv uses it
// unchanged as the initial global scope).
func NewEnv() *Env {
	return &Env{names: map[string]DVal{}}
}

// Bind extends the environment with name ↦ dval, shadowing any existing
// binding of the same name in an enclosing scope. Bind never mutates e;
// it returns a new Env so that the receiver's bindings remain visible to
// anyone still holding it (captured closures in particular).
func (e *Env) Bind(name string, dval DVal) *Env {
	return &Env{parent: e, names: map[string]DVal{name: dval}}
}

// BindAll extends the environment with several bindings at once, as one
// new scope frame — used for function/procedure parameter binding so all
// params are visible to each other's default-free evaluation in one step.
func (e *Env) BindAll(names []string, dvals []DVal) *Env {
	frame := make(map[string]DVal, len(names))
	for i, n := range names {
		frame[n] = dvals[i]
	}
	return &Env{parent: e, names: frame}
}

// Lookup resolves name starting at the innermost scope. The second
// return value is false if name is unbound anywhere in the chain.
func (e *Env) Lookup(name string) (DVal, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if scope.names == nil {
			continue
		}
		if dval, ok := scope.names[name]; ok {
			return dval, true
		}
	}
	return nil, false
}

// DeclaredInInnermost reports whether name is bound in e's own frame
// (not an ancestor) — used to distinguish "redeclare in same scope"
// (permitted, spec.md §4.6 VarDecl) from shadowing an outer binding.
func (e *Env) DeclaredInInnermost(name string) bool {
	if e == nil || e.names == nil {
		return false
	}
	_, ok := e.names[name]
	return ok
}

// Package environment implements glint's lexically scoped name
// binding discipline per spec.md §4.4.
package environment

import "github.com/glintlang/glint/internal/object"

// Environment maps names to values within one lexical scope, with an
// optional parent for outward lookup. Environments are created on
// function entry, block entry, and at interpreter start (the global
// scope, which has a nil parent).
type Environment struct {
	vars    map[string]object.Value
	mutable map[string]bool
	parent  *Environment
}

// New creates a fresh top-level (global) environment.
func New() *Environment {
	return &Environment{vars: make(map[string]object.Value), mutable: make(map[string]bool)}
}

// NewChild creates a scope nested inside e, used for block and
// function-call scopes.
func (e *Environment) NewChild() *Environment {
	child := New()
	child.parent = e
	return child
}

// Define inserts name into the current scope, shadowing any binding
// of the same name in an outer scope. Redefining a name already bound
// in THIS scope replaces it (spec.md §4.4).
func (e *Environment) Define(name string, v object.Value, mutable bool) {
	e.vars[name] = v
	e.mutable[name] = mutable
}

// Get walks the parent chain looking for name.
func (e *Environment) Get(name string) (object.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// IsMutable reports whether name, wherever it is bound in the chain,
// was declared mutable. The second return is false if name is undefined.
func (e *Environment) IsMutable(name string) (bool, bool) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			return env.mutable[name], true
		}
	}
	return false, false
}

// Assign searches upward for an existing binding of name and
// overwrites it in place. It fails (returns false) if name was never
// declared, matching spec.md §4.4's "assign ... fails if the name is
// undeclared".
func (e *Environment) Assign(name string, v object.Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return true
		}
	}
	return false
}

// DefinedHere reports whether name is bound directly in e, ignoring
// the parent chain.
func (e *Environment) DefinedHere(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Parent returns the enclosing scope, or nil for the global scope.
func (e *Environment) Parent() *Environment { return e.parent }

// OwnNames lists every name bound directly in e, ignoring the parent
// chain. Used by the module loader to build a Module's export table
// from a just-evaluated top-level environment.
func (e *Environment) OwnNames() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}

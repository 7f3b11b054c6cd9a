package interp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/evaluator"
	"github.com/glintlang/glint/internal/object"
	"github.com/glintlang/glint/internal/parser"
)

// Resolver loads the source text for an import path. The default
// resolver reads from the file system; tests and embedded hosts can
// substitute their own.
type Resolver func(path string) (string, error)

// FileResolver reads modulePath directly off disk.
func FileResolver(modulePath string) (string, error) {
	data, err := os.ReadFile(modulePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loader evaluates `import` targets once each, caching the resulting
// Module and detecting cycles via an in-progress set.
type loader struct {
	resolver   Resolver
	cache      map[string]*object.Module
	inProgress map[string]bool
}

func newLoader(resolver Resolver) *loader {
	if resolver == nil {
		resolver = FileResolver
	}
	return &loader{resolver: resolver, cache: make(map[string]*object.Module), inProgress: make(map[string]bool)}
}

// circularImportError reports a cyclic import chain, surfaced to the
// caller as semantic/circular_dependency per spec.md §6.
type circularImportError struct{ path string }

func (e *circularImportError) Error() string {
	return fmt.Sprintf("circular import detected at %q", e.path)
}

// load resolves, parses, and evaluates modulePath in a fresh
// environment nested under globals, returning the resulting Module.
// Every top-level binding becomes an export; the source language's
// `export`/`private` modifiers are parsed (ast.VarDecl.Export etc.)
// but this tier does not yet gate on them, so a module's full
// top-level surface is visible to importers.
func (l *loader) load(ev *evaluator.Evaluator, modulePath string, globals *environment.Environment) (*object.Module, error) {
	abs, err := filepath.Abs(modulePath)
	if err != nil {
		abs = modulePath
	}
	if m, ok := l.cache[abs]; ok {
		return m, nil
	}
	if l.inProgress[abs] {
		return nil, &circularImportError{path: abs}
	}
	l.inProgress[abs] = true
	defer delete(l.inProgress, abs)

	src, err := l.resolver(modulePath)
	if err != nil {
		return nil, err
	}
	prog := parser.Parse(src)
	modEnv := globals.NewChild()
	if _, err := ev.Run(prog, modEnv); err != nil {
		return nil, err
	}

	exports := object.NewObject()
	for _, name := range modEnv.OwnNames() {
		v, _ := modEnv.Get(name)
		exports.Set(name, v)
	}
	mod := &object.Module{Name: filepath.Base(modulePath), Exports: exports}
	l.cache[abs] = mod
	return mod, nil
}

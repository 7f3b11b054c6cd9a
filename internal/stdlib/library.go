// Package stdlib implements the host-provided native function tables
// spec.md §6 describes as external collaborators: libraries registered
// into the interpreter's global environment as tagged Object values.
package stdlib

import "github.com/glintlang/glint/internal/object"

// NewLibrary builds a Library Object: __type__ = "Library",
// __library_name__ = name, with fns attached as BuiltinFunction
// entries under their own names.
func NewLibrary(name string, fns map[string]object.BuiltinFn) *object.Object {
	lib := object.NewObject()
	lib.Set("__type__", object.String("Library"))
	lib.Set("__library_name__", object.String(name))
	for fnName, fn := range fns {
		lib.Set(fnName, &object.BuiltinFunction{Name: fnName, Fn: fn})
	}
	return lib
}

// Wrap builds a capability-wrapper library object (spec.md §6):
// a restricted view of lib exposing only the named entries. Missing
// entries are silently omitted, not errored, since the wrapper's
// whole point is omission-based restriction.
func Wrap(lib *object.Object, name string, expose []string) *object.Object {
	wrapped := object.NewObject()
	wrapped.Set("__type__", object.String("Library"))
	wrapped.Set("__library_name__", object.String(name))
	for _, fnName := range expose {
		if v, ok := lib.Get(fnName); ok {
			wrapped.Set(fnName, v)
		}
	}
	return wrapped
}

package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/glintlang/glint/internal/adaptive"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/evaluator"
	"github.com/glintlang/glint/internal/object"
	"github.com/glintlang/glint/internal/parser"
	"github.com/glintlang/glint/internal/stdlib"
)

// Interpreter is the top-level driver: it owns the global
// environment, the error system, the evaluator, the adaptive
// executor, and the module loader, per spec.md §2's dependency graph.
type Interpreter struct {
	Config    Config
	Globals   *environment.Environment
	Eval      *evaluator.Evaluator
	Adaptive  *adaptive.Executor
	loader    *loader
	out       io.Writer
}

// Option configures New.
type Option func(*Interpreter)

// WithResolver overrides the default file-system import resolver.
func WithResolver(r Resolver) Option {
	return func(i *Interpreter) { i.loader = newLoader(r) }
}

// WithOutput redirects program output (print, error reporting).
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// New builds an Interpreter with every bundled stdlib library
// registered into the global environment under its own name, per
// spec.md §6's library-registration contract.
func New(cfg Config, opts ...Option) *Interpreter {
	i := &Interpreter{
		Config:  cfg,
		Globals: environment.New(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.loader == nil {
		i.loader = newLoader(nil)
	}

	i.Eval = evaluator.New()
	i.Eval.Out = i.out
	i.Eval.Errors = errs.New(i.out)
	i.Eval.Errors.DebugMode = cfg.Debug
	i.Eval.Errors.StackTraceEnabled = cfg.StackTraceEnabled
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			i.Eval.Errors.SetLogSink(f)
		}
	}

	i.Adaptive = adaptive.New(i.Eval)
	i.Adaptive.Enabled = cfg.AdaptiveExecution

	i.registerStdlib()
	i.registerPrint()
	i.Eval.ImportHook = i.handleImport
	i.Eval.UseHook = i.handleUse

	return i
}

func (i *Interpreter) registerStdlib() {
	libs := map[string]*object.Object{
		"math":   stdlib.Math(),
		"string": stdlib.String(),
		"array":  stdlib.Array(),
		"json":   stdlib.JSON(),
		"config": stdlib.Config(),
		"db":     stdlib.DB(),
	}
	for name, lib := range libs {
		i.Globals.Define(name, lib, false)
	}
}

func (i *Interpreter) registerPrint() {
	i.Globals.Define("print", &object.BuiltinFunction{
		Name: "print",
		Fn: func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			parts := make([]interface{}, len(args))
			for idx, a := range args {
				parts[idx] = a.String()
			}
			fmt.Fprintln(i.out, parts...)
			return object.Null{}, nil
		},
	}, false)
}

// handleImport implements `import "path" as alias`.
func (i *Interpreter) handleImport(path, alias string, env *environment.Environment) error {
	mod, err := i.loader.load(i.Eval, path, i.Globals)
	if err != nil {
		return err
	}
	name := alias
	if name == "" {
		name = mod.Name
	}
	env.Define(name, mod, false)
	return nil
}

// handleUse implements `use libname as alias { item as alias2, ... }`.
func (i *Interpreter) handleUse(library, alias string, items, itemAliases []string, env *environment.Environment) error {
	v, ok := i.Globals.Get(library)
	if !ok {
		return fmt.Errorf("library %q is not registered", library)
	}
	lib, ok := v.(*object.Object)
	if !ok {
		return fmt.Errorf("%q is not a library", library)
	}
	if len(items) == 0 {
		name := alias
		if name == "" {
			name = library
		}
		env.Define(name, lib, false)
		return nil
	}
	for idx, item := range items {
		val, ok := lib.Get(item)
		if !ok {
			return fmt.Errorf("library %q has no member %q", library, item)
		}
		name := item
		if idx < len(itemAliases) && itemAliases[idx] != "" {
			name = itemAliases[idx]
		}
		env.Define(name, val, false)
	}
	return nil
}

// Run parses and evaluates source in the interpreter's global
// environment, ticking the adaptive executor once per call as the
// REPL/CLI driver would per top-level turn.
func (i *Interpreter) Run(source string) (object.Value, error) {
	prog := parser.Parse(source)
	v, err := i.Eval.Run(prog, i.Globals)
	i.Adaptive.Tick()
	return v, err
}

// CapabilityWrap builds a restricted view of a registered library,
// per spec.md §6's capability-wrapper hook, and binds it under name
// in env instead of the library's own name.
func (i *Interpreter) CapabilityWrap(library, name string, expose []string, env *environment.Environment) error {
	v, ok := i.Globals.Get(library)
	if !ok {
		return fmt.Errorf("library %q is not registered", library)
	}
	lib, ok := v.(*object.Object)
	if !ok {
		return fmt.Errorf("%q is not a library", library)
	}
	env.Define(name, stdlib.Wrap(lib, name, expose), false)
	return nil
}

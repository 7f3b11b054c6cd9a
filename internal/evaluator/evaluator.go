// Package evaluator implements glint's tree-walking evaluator per
// spec.md §4.5: the correctness baseline and the fallback target for
// every adaptive-tier deoptimization.
package evaluator

import (
	"fmt"
	"io"
	"os"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/object"
	"github.com/glintlang/glint/internal/pattern"
)

// MaxCallDepth bounds user-function recursion; exceeding it raises
// runtime/stack_overflow per spec.md §8.
const MaxCallDepth = 2000

// Throw is the Go error carrying a propagating glint exception. It is
// the evaluator's representation of the spec's `throw(ErrorInfo)`
// control channel.
type Throw struct {
	Info  *errs.ErrorInfo
	Value object.Value // the thrown value, bound to a catch variable verbatim
}

func (t *Throw) Error() string { return t.Info.Error() }

func newThrow(code errs.Code, msg string, line, col int) *Throw {
	info := errs.New(code, msg, line, col)
	return &Throw{Info: info, Value: &object.Error{Info: info, Msg: info.Message}}
}

type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// control is the evaluator's sentinel return channel for statements,
// separate from object.Value, per spec.md §4.5.
type control struct {
	kind  ctrlKind
	value object.Value
}

var normal = control{kind: ctrlNone}

// Evaluator is the tree-walking interpreter core. It owns no AST and
// mutates only the Environment passed to it and its own error system
// and call stack.
type Evaluator struct {
	Errors      *errs.System
	Out         io.Writer
	CallStack   []errs.StackFrame
	CurrentFile string

	// ClassTable maps class name -> *ast.ClassDecl, populated as class
	// declarations are evaluated at the top level.
	ClassTable map[string]*ast.ClassDecl

	// OnCall/OnLoopBack are optional hooks the adaptive executor
	// installs to feed the hot-spot tracker (spec.md §4.8) without the
	// evaluator depending on the hotspot package.
	OnCall     func(node ast.Node, args []object.Value)
	OnLoopBack func(node ast.Node)

	// Import/UseHook let internal/interp's module loader and library
	// registry handle `import`/`use` without the evaluator depending
	// on interp (interp depends on evaluator, not the reverse).
	ImportHook func(path, alias string, env *environment.Environment) error
	UseHook    func(library, alias string, items, itemAliases []string, env *environment.Environment) error

	// TieredCall lets the adaptive executor intercept a user-function
	// call before it falls through to the tree-walking callFunction,
	// per spec.md §4.12. The bool return reports whether the hook
	// handled the call at all; false means "run the AST tier as
	// normal", which is also what happens when the hook is nil.
	TieredCall func(fn *object.Function, args []object.Value, line, col int) (result object.Value, handled bool, err error)
}

// New creates an Evaluator writing program output to stdout with a
// fresh error system.
func New() *Evaluator {
	return &Evaluator{
		Errors:     errs.New(os.Stdout),
		Out:        os.Stdout,
		ClassTable: make(map[string]*ast.ClassDecl),
	}
}

// EvalExpr implements pattern.Evaluator so the pattern matcher can
// evaluate guard/literal/range sub-expressions.
func (e *Evaluator) EvalExpr(expr ast.Expression, env *environment.Environment) (object.Value, error) {
	return e.evalExpression(expr, env)
}

// Run evaluates a whole program's top-level block in env.
func (e *Evaluator) Run(prog *ast.Program, env *environment.Environment) (object.Value, error) {
	return e.evalProgramBlock(prog.Block, env)
}

func (e *Evaluator) evalProgramBlock(block *ast.Block, env *environment.Environment) (object.Value, error) {
	var result object.Value = object.Null{}
	for _, stmt := range block.Statements {
		if en, ok := stmt.(*ast.ErrorNode); ok {
			return nil, fmt.Errorf("program contains a parse error: %s", en.Message)
		}
		ctrl, v, err := e.evalStatement(stmt, env)
		if err != nil {
			return nil, err
		}
		if ctrl.kind != ctrlNone {
			return ctrl.value, nil
		}
		result = v
	}
	return result, nil
}

func (e *Evaluator) throwf(code errs.Code, line, col int, format string, args ...interface{}) *Throw {
	return newThrow(code, fmt.Sprintf(format, args...), line, col)
}

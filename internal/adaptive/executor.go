// Package adaptive implements the tier-selection executor: the only
// component that talks to every execution tier, per spec.md §4.12.
package adaptive

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/bytecode"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/evaluator"
	"github.com/glintlang/glint/internal/hotspot"
	"github.com/glintlang/glint/internal/jit"
	"github.com/glintlang/glint/internal/object"
	"github.com/glintlang/glint/internal/trace"
)

// siteState is everything the executor caches per call site: the
// hot-spot record, a compiled bytecode function once promoted, and a
// compiled JIT trace once a hot loop closes.
type siteState struct {
	record  *hotspot.Record
	fn      *bytecode.Function
	failed  bool // bytecode compilation was attempted and rejected this site
	traced  *jit.Compiled
}

// Stats exposes the counters spec.md §4.12 requires be observable
// without affecting program semantics.
type Stats struct {
	ASTCalls      int
	BytecodeCalls int
	JITCalls      int
	Deopts        int
}

// Executor wires the hot-spot tracker and the bytecode/trace/JIT
// tiers onto an Evaluator's OnCall/OnLoopBack hooks. Disabled,
// Evaluator.Run behaves exactly as the plain tree-walking evaluator
// (spec.md §8's hot-spot-promotion-is-semantics-preserving property).
type Executor struct {
	Eval    *evaluator.Evaluator
	Tracker *hotspot.Tracker
	Enabled bool
	Stats   Stats

	sites map[ast.Node]*siteState
}

func New(eval *evaluator.Evaluator) *Executor {
	e := &Executor{
		Eval:    eval,
		Tracker: hotspot.New(),
		Enabled: true,
		sites:   make(map[ast.Node]*siteState),
	}
	eval.OnCall = e.onCall
	eval.OnLoopBack = e.onLoopBack
	eval.TieredCall = e.tieredCall
	return e
}

// tieredCall is installed as Evaluator.TieredCall. It tries to run fn
// through the bytecode tier once its call site is warm; a decline or
// a deopt reports handled=false so Call falls back to the AST tier
// and, on the way, counts the attempt against Stats.ASTCalls.
func (e *Executor) tieredCall(fn *object.Function, args []object.Value, line, col int) (object.Value, bool, error) {
	if !e.Enabled {
		return nil, false, nil
	}
	body, ok := fn.Body.(*ast.Block)
	if !ok {
		return nil, false, nil
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
	}
	node := ast.Node(body)
	bc := e.TryCompiled(node, body, params)
	if bc == nil {
		e.RecordASTCall()
		return nil, false, nil
	}
	defEnv, _ := fn.Env.(*environment.Environment)
	if defEnv == nil {
		defEnv = environment.New()
	}
	call := func(callee object.Value, callArgs []object.Value) (object.Value, error) {
		return e.Eval.Call(callee, callArgs, line, col)
	}
	v, err := e.RunCompiled(node, defEnv, bc, args, call)
	if err != nil {
		if _, ok := err.(*bytecode.DeoptError); ok {
			e.RecordASTCall()
			return nil, false, nil
		}
		return nil, true, err
	}
	return v, true, nil
}

func (e *Executor) state(node ast.Node) *siteState {
	s, ok := e.sites[node]
	if !ok {
		s = &siteState{record: e.Tracker.RecordFor(node)}
		e.sites[node] = s
	}
	return s
}

// onCall is invoked by the evaluator before each user-function call
// runs, feeding the hot-spot tracker. It never changes the call's
// result; the tier decision is made right after, when tieredCall asks
// TryCompiled for the call site's bytecode.
func (e *Executor) onCall(node ast.Node, args []object.Value) {
	if !e.Enabled || node == nil {
		return
	}
	e.state(node).record.Sample(args, nil)
}

// onLoopBack is invoked on every loop back-edge the tree-walking
// evaluator takes and feeds one sample into that loop's hot-spot
// record. It does not compile or run the loop on another tier; loop
// traces come only from back-edges the bytecode VM takes inside a
// promoted function (see RunCompiled and PromoteLoop).
func (e *Executor) onLoopBack(node ast.Node) {
	if !e.Enabled {
		return
	}
	e.state(node).record.Sample(nil, nil)
}

// RecordASTCall increments the AST-tier call counter; tieredCall
// calls this whenever TryCompiled declined to promote a call site or
// the bytecode run deopted.
func (e *Executor) RecordASTCall() { e.Stats.ASTCalls++ }

// Tick ages every tracked site, per spec.md §4.8's decay policy.
// Interpreter.Run calls this once per Run, i.e. once per script or
// REPL turn.
func (e *Executor) Tick() {
	e.Tracker.Tick()
}

// TryCompiled returns the call site's compiled bytecode function if
// one exists and the site is eligible for promotion, compiling it on
// first eligibility. A nil result means the caller should continue
// running the AST evaluator for this call.
func (e *Executor) TryCompiled(node ast.Node, body *ast.Block, params []string) *bytecode.Function {
	if !e.Enabled {
		return nil
	}
	st := e.state(node)
	if st.fn != nil {
		return st.fn
	}
	if st.failed || st.record.Tier < hotspot.Warm {
		return nil
	}
	fn, err := bytecode.Compile(body, params)
	if err != nil {
		st.failed = true
		return nil
	}
	st.fn = fn
	return fn
}

// RunCompiled runs a promoted call site on the bytecode VM. A JIT
// trace that PromoteLoop compiled for the site is not executed here;
// the VM runs the whole function, loops included. A
// *bytecode.DeoptError records a deopt against the site and is
// returned, so the caller falls back to the AST evaluator.
func (e *Executor) RunCompiled(node ast.Node, env *environment.Environment, fn *bytecode.Function, args []object.Value, call bytecode.CallFn) (object.Value, error) {
	st := e.state(node)
	vm := bytecode.New(env, call)
	vm.OnLoopBack = func(loopHeader int, body []bytecode.Instr, liveRegs []uint8) {
		e.PromoteLoop(node, loopHeader, body, liveRegs)
	}
	result, err := vm.Run(fn, args)
	if err != nil {
		if _, ok := err.(*bytecode.DeoptError); ok {
			st.record.Deopt()
			e.Stats.Deopts++
		}
		return nil, err
	}
	e.Stats.BytecodeCalls++
	return result, nil
}

// PromoteLoop records a closed trace for a hot, type-stable loop and
// attempts JIT compilation. Failures are silent per spec.md §4.11:
// the trace is discarded and the bytecode tier keeps serving the loop.
func (e *Executor) PromoteLoop(node ast.Node, loopHeader int, body []bytecode.Instr, liveRegs []uint8) {
	st := e.state(node)
	if st.traced != nil || st.record.Tier != hotspot.Compiled {
		return
	}
	tr, err := trace.Record(loopHeader, body, liveRegs)
	if err != nil {
		return
	}
	tr = trace.Optimize(tr)
	compiled, err := jit.Compile(tr)
	if err != nil {
		return
	}
	st.traced = compiled
	e.Stats.JITCalls++
}

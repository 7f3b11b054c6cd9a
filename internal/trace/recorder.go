// Package trace implements the guarded-IR trace recorder and
// optimizer triggered on hot, type-stable loop back-edges, per
// spec.md §4.10.
package trace

import "github.com/glintlang/glint/internal/bytecode"

// IRKind identifies one trace IR node. The recorder emits a narrow
// subset of the bytecode op set, each guarded by the type assumption
// it was captured under.
type IRKind int

const (
	GuardIsNumber IRKind = iota
	LoadReg
	Add
	Sub
	Mul
	Lt
	Le
	LoopBack
	SideExit
)

// Node is one guarded IR instruction. Reg/RegB mirror the bytecode
// register operands the node was lowered from; ExitPC is set only on
// SideExit, the recorded bytecode PC to resume at on guard failure.
type Node struct {
	Kind   IRKind
	Reg    uint8
	RegB   uint8
	ExitPC int
}

// Trace is a closed loop trace: entry guards over the loop's live
// registers, followed by the loop body's linearized IR.
type Trace struct {
	EntryGuards []Node
	Body        []Node
	LoopHeader  int // bytecode PC the loop back-edge jumps to
}

// abortError is returned by Record when the bytecode slice contains a
// construct the trace recorder does not lower (calls, indexing,
// anything beyond arithmetic/compare over registers already proven
// numeric by the hot-spot tracker's type-stability check).
type abortError struct{ reason string }

func (e *abortError) Error() string { return "trace: aborted: " + e.reason }

// Record walks a compiled loop body (the instruction slice between
// the loop header and its closing back-edge jump) and lowers it to
// guarded IR. Only the arithmetic/comparison subset is supported;
// Record errors on anything else so the caller keeps running the
// bytecode tier for that loop.
func Record(loopHeader int, body []bytecode.Instr, liveRegs []uint8) (*Trace, error) {
	t := &Trace{LoopHeader: loopHeader}
	for _, r := range liveRegs {
		t.EntryGuards = append(t.EntryGuards, Node{Kind: GuardIsNumber, Reg: r})
	}
	for _, instr := range body {
		switch instr.Op {
		case bytecode.OpAdd:
			t.Body = append(t.Body, Node{Kind: Add, Reg: instr.A, RegB: instr.B})
		case bytecode.OpSub:
			t.Body = append(t.Body, Node{Kind: Sub, Reg: instr.A, RegB: instr.B})
		case bytecode.OpMul:
			t.Body = append(t.Body, Node{Kind: Mul, Reg: instr.A, RegB: instr.B})
		case bytecode.OpLt:
			t.Body = append(t.Body, Node{Kind: Lt, Reg: instr.A, RegB: instr.B})
		case bytecode.OpLe:
			t.Body = append(t.Body, Node{Kind: Le, Reg: instr.A, RegB: instr.B})
		case bytecode.OpMove, bytecode.OpLoadConst, bytecode.OpJump, bytecode.OpJumpIfFalse:
			// control/data shuffling the recorder passes through without
			// an IR node; the trace keeps no record of these instructions.
			continue
		default:
			return nil, &abortError{reason: "unsupported opcode in hot loop body"}
		}
	}
	t.Body = append(t.Body, Node{Kind: LoopBack})
	return t, nil
}

// Optimize applies the trace's two implemented passes, a dead-load
// elimination and a common-subexpression merge (see the scope note on
// each below); spec.md §4.10 names four more passes this function does
// not perform — constant propagation, strength reduction,
// loop-invariant code motion, and vectorization markers. Those are not
// implemented: the trace IR `Record` produces has no constant-value
// field on `Node` (a `LoadReg`/arithmetic node carries only register
// numbers), so there is nothing for a constant-propagation or
// strength-reduction pass to fold yet, and LICM has no candidate to
// hoist in the single-basic-block loop body this recorder ever
// produces (every node already dominates the loop back-edge). Adding
// those passes means first extending `Node` to carry constant operands
// recorded during `Record`, which is deferred rather than done
// speculatively alongside an unrelated fix.
func Optimize(t *Trace) *Trace {
	t.Body = eliminateDeadLoads(t.Body)
	t.Body = commonSubexpr(t.Body)
	return t
}

// eliminateDeadLoads drops a node whose destination register is
// overwritten before it is ever read, a cheap approximation of DCE
// over the trace's straight-line body.
func eliminateDeadLoads(body []Node) []Node {
	out := make([]Node, 0, len(body))
	for i, n := range body {
		if n.Kind == LoopBack {
			out = append(out, n)
			continue
		}
		dead := false
		for j := i + 1; j < len(body); j++ {
			if body[j].Reg == n.Reg && body[j].RegB != n.Reg {
				dead = true
				break
			}
			if body[j].RegB == n.Reg {
				break
			}
		}
		if !dead {
			out = append(out, n)
		}
	}
	return out
}

// commonSubexpr merges adjacent identical (Kind, Reg, RegB) nodes,
// the trace's CSE pass.
func commonSubexpr(body []Node) []Node {
	out := make([]Node, 0, len(body))
	for i, n := range body {
		if i > 0 && n == body[i-1] {
			continue
		}
		out = append(out, n)
	}
	return out
}

// NewSideExit builds the guard-failure continuation: the recorded
// bytecode PC and live-state layout the bytecode engine resumes at
// (spec.md §4.10's side-exit contract).
func NewSideExit(pc int) Node {
	return Node{Kind: SideExit, ExitPC: pc}
}

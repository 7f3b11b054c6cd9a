package bytecode

import (
	"fmt"
	"math"

	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/object"
)

// DeoptError is returned when an instruction's live operands no
// longer match the type profile the bytecode was compiled against
// (e.g. a register expected to hold a Number holds something else).
// The adaptive executor treats this as a trigger to fall back to the
// AST evaluator for the current call and record a deopt against the
// call site's hot-spot record.
type DeoptError struct{ Reason string }

func (e *DeoptError) Error() string { return "bytecode: deopt: " + e.Reason }

// CallFn invokes a callable Value with already-evaluated arguments;
// the VM takes this as a callback rather than depending on
// internal/evaluator directly, avoiding a cycle (the evaluator is the
// fallback tier the adaptive executor drives bytecode compilation
// from).
type CallFn func(callee object.Value, args []object.Value) (object.Value, error)

// VM executes one compiled Function against a 256-register frame.
type VM struct {
	Env  *environment.Environment // resolves OpGetGlobal/OpSetGlobal
	Call CallFn

	// OnLoopBack, if set, is invoked every time execution takes a
	// backward OpJump: loopHeader is the PC the jump lands on, body is
	// the instruction slice from loopHeader up to (excluding) the jump
	// itself, and liveRegs are the registers that slice reads or
	// writes. The adaptive executor uses this to feed the trace
	// recorder, per spec.md §4.10.
	OnLoopBack func(loopHeader int, body []Instr, liveRegs []uint8)
}

func New(env *environment.Environment, call CallFn) *VM {
	return &VM{Env: env, Call: call}
}

func toValue(c interface{}) object.Value {
	switch v := c.(type) {
	case float64:
		return object.Number(v)
	case string:
		return object.String(v)
	case bool:
		return object.Bool(v)
	case object.Value:
		return v
	default:
		return object.Null{}
	}
}

// Run executes fn with args bound to the first len(args) registers.
func (vm *VM) Run(fn *Function, args []object.Value) (object.Value, error) {
	regs := make([]object.Value, fn.NumRegs)
	for i := range regs {
		regs[i] = object.Null{}
	}
	for i, a := range args {
		if i < len(regs) {
			regs[i] = a
		}
	}

	pc := 0
	for {
		if pc < 0 || pc >= len(fn.Instrs) {
			return object.Null{}, nil
		}
		instr := fn.Instrs[pc]
		switch instr.Op {
		case OpHalt:
			return object.Null{}, nil
		case OpReturn:
			return regs[instr.A], nil
		case OpJump:
			target := pc + int(instr.Bx) + 1
			if vm.OnLoopBack != nil && target <= pc {
				body := fn.Instrs[target:pc]
				vm.OnLoopBack(target, body, liveRegisters(body))
			}
			pc = target
			continue
		case OpJumpIfFalse:
			if !object.Truthy(regs[instr.A]) {
				pc += int(instr.Bx) + 1
				continue
			}
			pc++
			continue
		case OpLoadConst:
			regs[instr.A] = toValue(fn.Consts[instr.Bx])
		case OpLoadNull:
			regs[instr.A] = object.Null{}
		case OpLoadBool:
			regs[instr.A] = object.Bool(instr.B == 1)
		case OpMove:
			regs[instr.A] = regs[instr.B]
		case OpNeg:
			n, ok := regs[instr.B].(object.Number)
			if !ok {
				return nil, &DeoptError{Reason: "operand to unary - is not a Number"}
			}
			regs[instr.A] = -n
		case OpNot:
			regs[instr.A] = object.Bool(!object.Truthy(regs[instr.B]))
		case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
			v, err := arith(instr.Op, regs[instr.B], regs[instr.C])
			if err != nil {
				return nil, err
			}
			regs[instr.A] = v
		case OpEq:
			regs[instr.A] = object.Bool(object.StructuralEqual(regs[instr.B], regs[instr.C]))
		case OpNe:
			regs[instr.A] = object.Bool(!object.StructuralEqual(regs[instr.B], regs[instr.C]))
		case OpLt, OpLe, OpGt, OpGe:
			cmp, ok := object.Compare(regs[instr.B], regs[instr.C])
			if !ok {
				return nil, &DeoptError{Reason: "operands are not comparable"}
			}
			switch instr.Op {
			case OpLt:
				regs[instr.A] = object.Bool(cmp < 0)
			case OpLe:
				regs[instr.A] = object.Bool(cmp <= 0)
			case OpGt:
				regs[instr.A] = object.Bool(cmp > 0)
			case OpGe:
				regs[instr.A] = object.Bool(cmp >= 0)
			}
		case OpGetGlobal:
			name := fn.Globals[instr.Bx]
			v, ok := vm.Env.Get(name)
			if !ok {
				return nil, &DeoptError{Reason: fmt.Sprintf("undefined global %q", name)}
			}
			regs[instr.A] = v
		case OpSetGlobal:
			name := fn.Globals[instr.Bx]
			if mutable, ok := vm.Env.IsMutable(name); ok && !mutable {
				return nil, &DeoptError{Reason: fmt.Sprintf("global %q is immutable", name)}
			}
			if !vm.Env.Assign(name, regs[instr.A]) {
				return nil, &DeoptError{Reason: fmt.Sprintf("undefined global %q", name)}
			}
		case OpNewArray:
			elems := append([]object.Value(nil), regs[instr.B:int(instr.B)+int(instr.C)]...)
			regs[instr.A] = object.NewArray(elems)
		case OpIndex:
			arr, ok := regs[instr.B].(*object.Array)
			if !ok {
				return nil, &DeoptError{Reason: "index target is not an Array"}
			}
			idx, ok := regs[instr.C].(object.Number)
			if !ok || int(idx) < 0 || int(idx) >= len(arr.Elements) {
				return nil, &DeoptError{Reason: "array index out of range"}
			}
			regs[instr.A] = arr.Elements[int(idx)]
		case OpSetIndex:
			arr, ok := regs[instr.B].(*object.Array)
			if !ok {
				return nil, &DeoptError{Reason: "index target is not an Array"}
			}
			idx, ok := regs[instr.C].(object.Number)
			if !ok || int(idx) < 0 || int(idx) >= len(arr.Elements) {
				return nil, &DeoptError{Reason: "array index out of range"}
			}
			arr.Elements[int(idx)] = regs[instr.A]
		case OpCall:
			callee := regs[instr.B]
			callArgs := append([]object.Value(nil), regs[int(instr.B)+1:int(instr.B)+1+int(instr.C)]...)
			v, err := vm.Call(callee, callArgs)
			if err != nil {
				return nil, err
			}
			regs[instr.A] = v
		default:
			return nil, &DeoptError{Reason: fmt.Sprintf("unimplemented opcode %d", instr.Op)}
		}
		pc++
	}
}

// liveRegisters collects, in first-seen order, every register operand
// a loop body slice reads or writes. OpJump has no register operand
// and contributes nothing; instructions whose only register is A
// (OpLoadConst, OpLoadNull, OpLoadBool, OpGetGlobal, OpJumpIfFalse)
// contribute A; the two-operand OpMove, OpNeg and OpNot contribute A
// and B; every other instruction contributes A, B and C.
func liveRegisters(body []Instr) []uint8 {
	seen := make(map[uint8]bool)
	var regs []uint8
	add := func(r uint8) {
		if !seen[r] {
			seen[r] = true
			regs = append(regs, r)
		}
	}
	for _, instr := range body {
		switch instr.Op {
		case OpJump:
			continue
		case OpLoadConst, OpLoadNull, OpLoadBool, OpGetGlobal, OpJumpIfFalse:
			add(instr.A)
		case OpMove, OpNeg, OpNot:
			add(instr.A)
			add(instr.B)
		default:
			add(instr.A)
			add(instr.B)
			add(instr.C)
		}
	}
	return regs
}

func arith(op Op, l, r object.Value) (object.Value, error) {
	ln, lok := l.(object.Number)
	rn, rok := r.(object.Number)
	if !lok || !rok {
		return nil, &DeoptError{Reason: "arithmetic operand is not a Number"}
	}
	switch op {
	case OpAdd:
		return ln + rn, nil
	case OpSub:
		return ln - rn, nil
	case OpMul:
		return ln * rn, nil
	case OpDiv:
		if rn == 0 {
			return nil, &DeoptError{Reason: "division by zero"}
		}
		return ln / rn, nil
	case OpMod:
		if rn == 0 {
			return nil, &DeoptError{Reason: "modulo by zero"}
		}
		return object.Number(math.Mod(float64(ln), float64(rn))), nil
	case OpPow:
		return object.Number(math.Pow(float64(ln), float64(rn))), nil
	}
	return nil, &DeoptError{Reason: "unknown arithmetic opcode"}
}

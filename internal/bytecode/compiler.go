package bytecode

import (
	"fmt"

	"github.com/glintlang/glint/internal/ast"
)

// Function is one compiled unit: a register-machine program plus its
// constant pool and the number of registers the frame needs.
type Function struct {
	Instrs  []Instr
	Consts  []interface{} // raw float64/string literals; the VM converts them with toValue
	Globals []string      // names addressed by OpGetGlobal/OpSetGlobal
	NumRegs int
	NumArgs int
}

// compileError marks an AST construct the bytecode tier does not
// (yet) lower; the adaptive executor catches this and keeps the call
// site at the AST tier instead of promoting it.
type compileError struct{ reason string }

func (e *compileError) Error() string { return "bytecode: cannot compile: " + e.reason }

func unsupported(format string, args ...interface{}) error {
	return &compileError{reason: fmt.Sprintf(format, args...)}
}

// scope tracks name -> register bindings for one lexical block, with
// a parent for outward lookup, mirroring environment.Environment but
// resolved entirely at compile time.
type scope struct {
	regs   map[string]uint8
	parent *scope
}

func newScope(parent *scope) *scope { return &scope{regs: make(map[string]uint8), parent: parent} }

func (s *scope) lookup(name string) (uint8, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if r, ok := sc.regs[name]; ok {
			return r, true
		}
	}
	return 0, false
}

type compiler struct {
	instrs    []Instr
	consts    []interface{}
	globals   []string
	globalIdx map[string]int
	nextReg   uint8
	maxReg    uint8
	scope     *scope
}

// Compile lowers a function literal body into a register-bytecode
// Function. paramNames assigns registers 0..len(paramNames)-1. It
// returns a *compileError (via the returned error) for any construct
// this tier does not yet support: class bodies, spore, try/catch,
// macros, destructuring, and await are left to the AST evaluator.
func Compile(body *ast.Block, paramNames []string) (*Function, error) {
	c := &compiler{globalIdx: make(map[string]int)}
	c.scope = newScope(nil)
	for _, p := range paramNames {
		c.define(p)
	}
	if err := c.compileBlock(body); err != nil {
		return nil, err
	}
	c.emit(Instr{Op: OpHalt})
	return &Function{
		Instrs:  c.instrs,
		Consts:  c.consts,
		Globals: c.globals,
		NumRegs: int(c.maxReg) + 1,
		NumArgs: len(paramNames),
	}, nil
}

func (c *compiler) define(name string) uint8 {
	r := c.nextReg
	c.scope.regs[name] = r
	c.nextReg++
	if c.nextReg > c.maxReg {
		c.maxReg = c.nextReg
	}
	if c.nextReg == 0 {
		// wrapped past 255 registers; spec.md §4.9's 256-register frame exhausted
	}
	return r
}

func (c *compiler) emit(i Instr) int {
	c.instrs = append(c.instrs, i)
	return len(c.instrs) - 1
}

func (c *compiler) constIndex(v interface{}) int32 {
	c.consts = append(c.consts, v)
	return int32(len(c.consts) - 1)
}

func (c *compiler) globalIndex(name string) int32 {
	if i, ok := c.globalIdx[name]; ok {
		return int32(i)
	}
	i := len(c.globals)
	c.globals = append(c.globals, name)
	c.globalIdx[name] = i
	return int32(i)
}

func (c *compiler) compileBlock(b *ast.Block) error {
	c.scope = newScope(c.scope)
	defer func() { c.scope = c.scope.parent }()
	for _, stmt := range b.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileStmt(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		r := c.define(s.Name)
		if s.Initializer == nil {
			c.emit(Instr{Op: OpLoadNull, A: r})
			return nil
		}
		return c.compileExprInto(s.Initializer, r)
	case *ast.ExprStmt:
		_, err := c.compileExpr(s.X)
		return err
	case *ast.AssignStmt:
		_, err := c.compileExpr(s)
		return err
	case *ast.IfStmt:
		return c.compileIf(s)
	case *ast.WhileStmt:
		return c.compileWhile(s)
	case *ast.ForStmt:
		return c.compileFor(s)
	case *ast.ReturnStmt:
		if s.Value == nil {
			r := c.alloc()
			c.emit(Instr{Op: OpLoadNull, A: r})
			c.emit(Instr{Op: OpReturn, A: r})
			return nil
		}
		r, err := c.compileExpr(s.Value)
		if err != nil {
			return err
		}
		c.emit(Instr{Op: OpReturn, A: r})
		return nil
	default:
		return unsupported("statement %T", stmt)
	}
}

// alloc reserves a scratch register without naming it.
func (c *compiler) alloc() uint8 {
	r := c.nextReg
	c.nextReg++
	if c.nextReg > c.maxReg {
		c.maxReg = c.nextReg
	}
	return r
}

func (c *compiler) compileIf(s *ast.IfStmt) error {
	var endJumps []int
	for _, branch := range s.Branches {
		condReg, err := c.compileExpr(branch.Cond)
		if err != nil {
			return err
		}
		jf := c.emit(Instr{Op: OpJumpIfFalse, A: condReg})
		if err := c.compileBlock(branch.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emit(Instr{Op: OpJump}))
		c.patch(jf)
	}
	if s.Else != nil {
		if err := c.compileBlock(s.Else); err != nil {
			return err
		}
	}
	for _, j := range endJumps {
		c.patch(j)
	}
	return nil
}

func (c *compiler) compileWhile(s *ast.WhileStmt) error {
	loopStart := len(c.instrs)
	condReg, err := c.compileExpr(s.Cond)
	if err != nil {
		return err
	}
	jf := c.emit(Instr{Op: OpJumpIfFalse, A: condReg})
	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.emit(Instr{Op: OpJump, Bx: int32(loopStart - len(c.instrs) - 1)})
	c.patch(jf)
	return nil
}

// compileFor supports only `for x in a..b [by step]` with a positive
// number-literal step (or none), the pattern spec.md §8's
// tier-equivalence property exercises; any other iterable expression
// or step falls back to the AST evaluator.
func (c *compiler) compileFor(s *ast.ForStmt) error {
	rangeExpr, ok := s.Collection.(*ast.RangeExpr)
	if !ok {
		return unsupported("for-in over a non-range collection")
	}
	// The loop test below is `<`/`<=`, which only fits an ascending
	// range; zero, negative, and computed steps stay on the AST tier.
	if rangeExpr.Step != nil {
		if lit, ok := rangeExpr.Step.(*ast.NumberLiteral); !ok || lit.Value <= 0 {
			return unsupported("range step that is not a positive number literal")
		}
	}
	fromReg, err := c.compileExpr(rangeExpr.From)
	if err != nil {
		return err
	}
	toReg, err := c.compileExpr(rangeExpr.To)
	if err != nil {
		return err
	}
	stepReg := c.alloc()
	if rangeExpr.Step != nil {
		if err := c.compileExprInto(rangeExpr.Step, stepReg); err != nil {
			return err
		}
	} else {
		c.emit(Instr{Op: OpLoadConst, A: stepReg, Bx: c.constIndex(float64(1))})
	}

	c.scope = newScope(c.scope)
	iterReg := c.define(s.IterName)
	c.emit(Instr{Op: OpMove, A: iterReg, B: fromReg})

	loopStart := len(c.instrs)
	cmpOp := OpLt
	if rangeExpr.Inclusive {
		cmpOp = OpLe
	}
	condReg := c.alloc()
	c.emit(Instr{Op: cmpOp, A: condReg, B: iterReg, C: toReg})
	jf := c.emit(Instr{Op: OpJumpIfFalse, A: condReg})

	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.emit(Instr{Op: OpAdd, A: iterReg, B: iterReg, C: stepReg})
	c.emit(Instr{Op: OpJump, Bx: int32(loopStart - len(c.instrs) - 1)})
	c.patch(jf)
	c.scope = c.scope.parent
	return nil
}

func (c *compiler) patch(jumpIdx int) {
	c.instrs[jumpIdx].Bx = int32(len(c.instrs) - jumpIdx - 1)
}

// compileExpr compiles expr into a fresh register and returns it.
func (c *compiler) compileExpr(expr ast.Expression) (uint8, error) {
	r := c.alloc()
	if err := c.compileExprInto(expr, r); err != nil {
		return 0, err
	}
	return r, nil
}

func (c *compiler) compileExprInto(expr ast.Expression, dst uint8) error {
	switch x := expr.(type) {
	case *ast.NumberLiteral:
		c.emit(Instr{Op: OpLoadConst, A: dst, Bx: c.constIndex(x.Value)})
		return nil
	case *ast.StringLiteral:
		c.emit(Instr{Op: OpLoadConst, A: dst, Bx: c.constIndex(x.Value)})
		return nil
	case *ast.BoolLiteral:
		b := uint8(0)
		if x.Value {
			b = 1
		}
		c.emit(Instr{Op: OpLoadBool, A: dst, B: b})
		return nil
	case *ast.NullLiteral:
		c.emit(Instr{Op: OpLoadNull, A: dst})
		return nil
	case *ast.Identifier:
		if r, ok := c.scope.lookup(x.Name); ok {
			c.emit(Instr{Op: OpMove, A: dst, B: r})
			return nil
		}
		c.emit(Instr{Op: OpGetGlobal, A: dst, Bx: c.globalIndex(x.Name)})
		return nil
	case *ast.UnaryExpr:
		src, err := c.compileExpr(x.Operand)
		if err != nil {
			return err
		}
		switch x.Op {
		case "-":
			c.emit(Instr{Op: OpNeg, A: dst, B: src})
		case "!":
			c.emit(Instr{Op: OpNot, A: dst, B: src})
		default:
			return unsupported("unary operator %q", x.Op)
		}
		return nil
	case *ast.BinaryExpr:
		op, ok := binOps[x.Op]
		if !ok {
			return unsupported("binary operator %q", x.Op)
		}
		lhs, err := c.compileExpr(x.Left)
		if err != nil {
			return err
		}
		rhs, err := c.compileExpr(x.Right)
		if err != nil {
			return err
		}
		c.emit(Instr{Op: op, A: dst, B: lhs, C: rhs})
		return nil
	case *ast.AssignStmt:
		ident, ok := x.Target.(*ast.Identifier)
		if !ok {
			return unsupported("assignment to a non-identifier target")
		}
		if err := c.compileExprInto(x.Value, dst); err != nil {
			return err
		}
		if r, ok := c.scope.lookup(ident.Name); ok {
			c.emit(Instr{Op: OpMove, A: r, B: dst})
			return nil
		}
		c.emit(Instr{Op: OpSetGlobal, A: dst, Bx: c.globalIndex(ident.Name)})
		return nil
	case *ast.CallExpr:
		callee, ok := x.Callee.(*ast.Identifier)
		if !ok {
			return unsupported("call to a non-identifier callee")
		}
		base := c.alloc()
		c.emit(Instr{Op: OpGetGlobal, A: base, Bx: c.globalIndex(callee.Name)})
		// Reserve the argument registers first so they sit contiguously
		// after base, as OpCall reads them; scratch registers an argument
		// expression needs are allocated after them.
		argRegs := make([]uint8, len(x.Args))
		for i := range x.Args {
			argRegs[i] = c.alloc()
		}
		for i, a := range x.Args {
			if err := c.compileExprInto(a, argRegs[i]); err != nil {
				return err
			}
		}
		c.emit(Instr{Op: OpCall, A: dst, B: base, C: uint8(len(x.Args))})
		return nil
	default:
		return unsupported("expression %T", expr)
	}
}

var binOps = map[string]Op{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod, "**": OpPow,
	"==": OpEq, "!=": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

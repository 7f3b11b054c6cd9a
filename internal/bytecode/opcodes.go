// Package bytecode implements the register-based compiled tier of the
// adaptive execution pipeline: a 256-register virtual machine and an
// AST-to-bytecode compiler, per spec.md §4.9.
package bytecode

// Op identifies one bytecode instruction. The register VM's
// instruction word is nominally a fixed-width 32-bit encoding (8-bit
// opcode, three 8-bit register operands, or an 8-bit opcode plus one
// 16-bit wide operand for constant/jump targets); Instr keeps the
// decoded fields directly rather than a packed uint32, since nothing
// in this tier serializes bytecode to disk.
type Op uint8

const (
	OpLoadConst Op = iota // A = consts[Bx]
	OpLoadNull             // A = null
	OpLoadBool             // A = bool(B)
	OpMove                 // A = B
	OpAdd                  // A = B + C
	OpSub                  // A = B - C
	OpMul                  // A = B * C
	OpDiv                  // A = B / C
	OpMod                  // A = B % C
	OpPow                  // A = B ** C
	OpNeg                  // A = -B
	OpNot                  // A = !B
	OpEq                   // A = B == C
	OpNe                   // A = B != C
	OpLt                   // A = B < C
	OpLe                   // A = B <= C
	OpGt                   // A = B > C
	OpGe                   // A = B >= C
	OpJump                 // pc += Bx
	OpJumpIfFalse          // if !truthy(A): pc += Bx
	OpGetGlobal            // A = globals[Bx]
	OpSetGlobal            // globals[Bx] = A
	OpNewArray             // A = array{regs[B..B+C]}
	OpIndex                // A = B[C]
	OpSetIndex             // B[C] = A
	OpCall                 // A = call(B, args regs[B+1..B+1+C])
	OpReturn               // return A
	OpHalt
)

// Instr is one decoded bytecode instruction.
type Instr struct {
	Op   Op
	A, B, C uint8
	Bx   int32 // wide operand: constant/global index or signed jump offset
}

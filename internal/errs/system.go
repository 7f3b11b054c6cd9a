package errs

import (
	"fmt"
	"io"
	"sync"
)

// Handler is invoked with every error reported to the System, in
// registration order. The default console handler (see reporter.go)
// is always registered first, by New.
type Handler func(*ErrorInfo)

// ExceptionContext tracks the active try/catch/finally nesting for
// the single running fiber, per spec.md §3.
type ExceptionContext struct {
	CurrentError *ErrorInfo
	InTry        bool
	InCatch      bool
	InFinally    bool
	TryDepth     int
	CatchVar     string
}

// System is the process-wide error/exception machinery described in
// spec.md §4.7. It is owned by the interpreter and threaded into
// every API that may fail, per DESIGN.md's note on avoiding the
// source's global-singleton design.
type System struct {
	mu        sync.Mutex
	log       []*ErrorInfo
	ctx       ExceptionContext
	handlers  []Handler
	DebugMode bool
	StackTraceEnabled bool
	logSink   io.Writer
}

// New creates an ErrorSystem with the default console handler
// registered.
func New(out io.Writer) *System {
	s := &System{}
	s.handlers = append(s.handlers, NewConsoleReporter(out).Handle)
	return s
}

// SetLogSink attaches an additional append-only sink (e.g. a log
// file) that every reported error is also written to.
func (s *System) SetLogSink(w io.Writer) { s.logSink = w }

// AddHandler registers an additional callback invoked on every
// reported error, in addition to the console reporter.
func (s *System) AddHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Report appends info to the diagnostic log, sets it as the current
// exception, and invokes every registered handler. This is the
// "throw" half of spec.md §4.7.
func (s *System) Report(info *ErrorInfo) {
	s.mu.Lock()
	s.log = append(s.log, info)
	s.ctx.CurrentError = info
	handlers := append([]Handler(nil), s.handlers...)
	sink := s.logSink
	inTry := s.ctx.InTry
	s.mu.Unlock()

	if sink != nil {
		fmt.Fprintln(sink, info.Error())
	}
	if inTry {
		return // the try/catch machinery will render it only if uncaught
	}
	for _, h := range handlers {
		h(info)
	}
}

// Catch clears the current exception and returns it, for binding to
// a catch variable.
func (s *System) Catch() *ErrorInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ctx.CurrentError
	s.ctx.CurrentError = nil
	return e
}

// EnterTry/ExitTry/EnterCatch/ExitCatch/EnterFinally/ExitFinally
// track nesting for diagnostics and for the "uncaught at top level"
// decision in Report.
func (s *System) EnterTry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.InTry = true
	s.ctx.TryDepth++
}

func (s *System) ExitTry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.TryDepth--
	if s.ctx.TryDepth <= 0 {
		s.ctx.TryDepth = 0
		s.ctx.InTry = false
	}
}

func (s *System) EnterCatch(varName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.InCatch = true
	s.ctx.CatchVar = varName
}

func (s *System) ExitCatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.InCatch = false
	s.ctx.CatchVar = ""
}

func (s *System) EnterFinally() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.InFinally = true
}

func (s *System) ExitFinally() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.InFinally = false
}

// Current returns the active exception, if any.
func (s *System) Current() *ErrorInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.CurrentError
}

// ReportUncaught forces handler dispatch even while InTry is set;
// used by the evaluator when a try's body finishes unwinding without
// a matching catch (e.g. no catch clause at all).
func (s *System) ReportUncaught(info *ErrorInfo) {
	s.mu.Lock()
	handlers := append([]Handler(nil), s.handlers...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(info)
	}
}

// Log returns the append-only diagnostic replay log.
func (s *System) Log() []*ErrorInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ErrorInfo(nil), s.log...)
}

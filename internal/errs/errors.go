package errs

import "fmt"

// StackFrame mirrors spec.md's CallFrame, captured at throw time when
// stack traces are enabled.
type StackFrame struct {
	FunctionName string
	FileName     string
	Line         int
}

// ErrorInfo is the structured error record described in spec.md §3.
type ErrorInfo struct {
	Code        Code
	Severity    Severity
	Category    Category
	Message     string
	Suggestion  string
	FileName    string
	Line        int
	Column      int
	SourceLine  string
	StackTrace  []StackFrame
	Context     map[string]string
}

// New builds an ErrorInfo from a registered Code, filling severity,
// category, and suggestion from the code registry and allowing the
// caller to override the message.
func New(code Code, message string, line, column int) *ErrorInfo {
	if message == "" {
		message = code.Message()
	}
	return &ErrorInfo{
		Code:       code,
		Severity:   code.DefaultSeverity(),
		Category:   code.Category(),
		Message:    message,
		Suggestion: code.Suggestion(),
		Line:       line,
		Column:     column,
	}
}

func (e *ErrorInfo) Error() string {
	return fmt.Sprintf("%s (Line %d, Column %d) [E%d]", e.Message, e.Line, e.Column, e.Code)
}

// WithFile attaches the source file name, returning e for chaining.
func (e *ErrorInfo) WithFile(name string) *ErrorInfo {
	e.FileName = name
	return e
}

// WithStack attaches a captured call-frame chain, returning e for
// chaining.
func (e *ErrorInfo) WithStack(frames []StackFrame) *ErrorInfo {
	e.StackTrace = frames
	return e
}

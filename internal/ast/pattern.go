package ast

// Pattern is the node interface for every `spore` pattern variant.
type Pattern interface {
	Node
	patternNode()
}

// TypePattern matches when the subject's runtime kind name equals Name
// (e.g. "Number", "String", "Array", "Object", or a user class name).
type TypePattern struct {
	Base
	Name string
	Bind string // optional capture name, empty if none
}

func (p *TypePattern) patternNode() {}

// LiteralPattern matches a subject structurally equal to Value.
type LiteralPattern struct {
	Base
	Value Expression
}

func (p *LiteralPattern) patternNode() {}

// WildcardPattern (`_`) matches anything and binds nothing.
type WildcardPattern struct{ Base }

func (p *WildcardPattern) patternNode() {}

// BindPattern matches anything and binds the subject to Name.
type BindPattern struct {
	Base
	Name string
}

func (p *BindPattern) patternNode() {}

// RangePattern matches a number within [From, To) or [From, To].
type RangePattern struct {
	Base
	From, To  Expression
	Inclusive bool
}

func (p *RangePattern) patternNode() {}

// RegexPattern matches a string against a regular expression.
type RegexPattern struct {
	Base
	Source string
	Flags  string
}

func (p *RegexPattern) patternNode() {}

// ArrayDestructurePattern matches an array, binding sub-patterns to
// elements. If Rest is non-empty, it captures the remaining elements
// after matching the fixed prefix.
type ArrayDestructurePattern struct {
	Base
	Elements []Pattern
	Rest     string // empty if there is no `...rest` capture
}

func (p *ArrayDestructurePattern) patternNode() {}

// ObjectDestructureField binds Pattern to the value at Key.
type ObjectDestructureField struct {
	Key     string
	Pattern Pattern
}

type ObjectDestructurePattern struct {
	Base
	Fields []ObjectDestructureField
}

func (p *ObjectDestructurePattern) patternNode() {}

// GuardPattern matches iff Inner matches and Cond is truthy given
// Inner's bindings.
type GuardPattern struct {
	Base
	Inner Pattern
	Cond  Expression
}

func (p *GuardPattern) patternNode() {}

// OrPattern matches iff Left matches, else Right matches. Only the
// matching side's bindings are visible (see DESIGN.md, "Open
// Question: `or`-pattern binding conflicts").
type OrPattern struct {
	Base
	Left, Right Pattern
}

func (p *OrPattern) patternNode() {}

// AndPattern matches iff both Left and Right match with consistent
// bindings.
type AndPattern struct {
	Base
	Left, Right Pattern
}

func (p *AndPattern) patternNode() {}

// NotPattern matches iff Inner does not match. Introduces no bindings.
type NotPattern struct {
	Base
	Inner Pattern
}

func (p *NotPattern) patternNode() {}

// SporeCase is one arm of a `spore` expression: `pattern: block` or
// the lambda-style `pattern => expression`.
type SporeCase struct {
	Pattern     Pattern
	Body        *Block
	LambdaStyle bool // true for `pattern => expr` bodies
	IsRoot      bool // true for a lambda-style wildcard case `_ => expr`, tried only after every other case
}

// SporeExpr is the language's pattern-matching form.
type SporeExpr struct {
	Base
	Subject Expression
	Cases   []SporeCase
}

func (n *SporeExpr) exprNode() {}

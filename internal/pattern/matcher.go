// Package pattern implements the decision procedure for glint's
// `spore` pattern-matching form, per spec.md §4.6.
package pattern

import (
	"regexp"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/object"
)

// Evaluator is the minimal callback surface the matcher needs from
// the tree-walking evaluator: evaluating guard/literal/range
// sub-expressions against a scope. Declared here (rather than taking
// a concrete *evaluator.Evaluator) to avoid an import cycle, since
// the evaluator package depends on pattern for `spore` support.
type Evaluator interface {
	EvalExpr(e ast.Expression, env *environment.Environment) (object.Value, error)
}

// Bindings collects the name -> value captures a successful match
// introduces, applied to the case's environment before its body runs.
type Bindings map[string]object.Value

// Match attempts to match subject against pat. On success it returns
// (bindings, true, nil); a non-matching pattern returns (nil, false,
// nil). An error is returned only if evaluating a guard, literal, or
// range-bound sub-expression fails.
func Match(ev Evaluator, env *environment.Environment, pat ast.Pattern, subject object.Value) (Bindings, bool, error) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return Bindings{}, true, nil

	case *ast.BindPattern:
		return Bindings{p.Name: subject}, true, nil

	case *ast.TypePattern:
		if object.TypeNameOf(subject) != p.Name {
			return nil, false, nil
		}
		b := Bindings{}
		if p.Bind != "" {
			b[p.Bind] = subject
		}
		return b, true, nil

	case *ast.LiteralPattern:
		v, err := ev.EvalExpr(p.Value, env)
		if err != nil {
			return nil, false, err
		}
		if object.StructuralEqual(v, subject) {
			return Bindings{}, true, nil
		}
		return nil, false, nil

	case *ast.RangePattern:
		num, ok := subject.(object.Number)
		if !ok {
			return nil, false, nil
		}
		fromV, err := ev.EvalExpr(p.From, env)
		if err != nil {
			return nil, false, err
		}
		toV, err := ev.EvalExpr(p.To, env)
		if err != nil {
			return nil, false, err
		}
		from, ok1 := fromV.(object.Number)
		to, ok2 := toV.(object.Number)
		if !ok1 || !ok2 {
			return nil, false, nil
		}
		if p.Inclusive {
			if num >= from && num <= to {
				return Bindings{}, true, nil
			}
		} else if num >= from && num < to {
			return Bindings{}, true, nil
		}
		return nil, false, nil

	case *ast.RegexPattern:
		s, ok := subject.(object.String)
		if !ok {
			return nil, false, nil
		}
		re, err := regexp.Compile(p.Source)
		if err != nil {
			return nil, false, nil
		}
		if re.MatchString(string(s)) {
			return Bindings{}, true, nil
		}
		return nil, false, nil

	case *ast.ArrayDestructurePattern:
		return matchArrayDestructure(ev, env, p, subject)

	case *ast.ObjectDestructurePattern:
		return matchObjectDestructure(ev, env, p, subject)

	case *ast.GuardPattern:
		inner, ok, err := Match(ev, env, p.Inner, subject)
		if err != nil || !ok {
			return nil, ok, err
		}
		guardEnv := env.NewChild()
		applyBindings(guardEnv, inner)
		cond, err := ev.EvalExpr(p.Cond, guardEnv)
		if err != nil {
			return nil, false, err
		}
		if object.Truthy(cond) {
			return inner, true, nil
		}
		return nil, false, nil

	case *ast.OrPattern:
		if b, ok, err := Match(ev, env, p.Left, subject); err != nil || ok {
			return b, ok, err
		}
		return Match(ev, env, p.Right, subject)

	case *ast.AndPattern:
		lb, ok, err := Match(ev, env, p.Left, subject)
		if err != nil || !ok {
			return nil, ok, err
		}
		rb, ok, err := Match(ev, env, p.Right, subject)
		if err != nil || !ok {
			return nil, ok, err
		}
		merged := Bindings{}
		for k, v := range lb {
			merged[k] = v
		}
		for k, v := range rb {
			if prev, seen := merged[k]; seen && !object.StructuralEqual(prev, v) {
				return nil, false, nil
			}
			merged[k] = v
		}
		return merged, true, nil

	case *ast.NotPattern:
		_, ok, err := Match(ev, env, p.Inner, subject)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return nil, false, nil
		}
		return Bindings{}, true, nil

	default:
		return nil, false, nil
	}
}

func matchArrayDestructure(ev Evaluator, env *environment.Environment, p *ast.ArrayDestructurePattern, subject object.Value) (Bindings, bool, error) {
	arr, ok := subject.(*object.Array)
	if !ok {
		return nil, false, nil
	}
	if p.Rest == "" {
		if len(arr.Elements) != len(p.Elements) {
			return nil, false, nil
		}
	} else if len(arr.Elements) < len(p.Elements) {
		return nil, false, nil
	}
	result := Bindings{}
	for i, sub := range p.Elements {
		b, ok, err := Match(ev, env, sub, arr.Elements[i])
		if err != nil || !ok {
			return nil, ok, err
		}
		for k, v := range b {
			result[k] = v
		}
	}
	if p.Rest != "" {
		rest := append([]object.Value(nil), arr.Elements[len(p.Elements):]...)
		result[p.Rest] = object.NewArray(rest)
	}
	return result, true, nil
}

func matchObjectDestructure(ev Evaluator, env *environment.Environment, p *ast.ObjectDestructurePattern, subject object.Value) (Bindings, bool, error) {
	obj, ok := subject.(*object.Object)
	if !ok {
		return nil, false, nil
	}
	result := Bindings{}
	for _, f := range p.Fields {
		v, ok := obj.Get(f.Key)
		if !ok {
			return nil, false, nil
		}
		b, ok, err := Match(ev, env, f.Pattern, v)
		if err != nil || !ok {
			return nil, ok, err
		}
		for k, bv := range b {
			result[k] = bv
		}
	}
	return result, true, nil
}

func applyBindings(env *environment.Environment, b Bindings) {
	for k, v := range b {
		env.Define(k, v, true)
	}
}

// ApplyBindings defines every captured binding as a mutable local in
// env. Exported so the evaluator can reuse it when running a
// successful case's body.
func ApplyBindings(env *environment.Environment, b Bindings) { applyBindings(env, b) }

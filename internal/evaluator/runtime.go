package evaluator

import (
	"strings"

	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/object"
)

// Range is the lazy value produced by `a..b` / `a..=b` [`by step`]
// expressions (spec.md §9, Open Question resolved in SPEC_FULL.md §D):
// negative steps iterate downward, and step == 0 raises a lazy
// runtime/invalid_argument error at the first materialization attempt
// rather than at construction time.
type Range struct {
	From, To, Step float64
	Inclusive      bool
}

func (r *Range) Kind() object.Kind { return "Range" }
func (r *Range) String() string {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	return object.Number(r.From).String() + op + object.Number(r.To).String()
}

// Values materializes the range into a concrete slice, the point at
// which a step of zero is diagnosed.
func (r *Range) Values() ([]object.Value, error) {
	if r.Step == 0 {
		return nil, errRangeStepZero
	}
	var out []object.Value
	if r.Step > 0 {
		for v := r.From; (r.Inclusive && v <= r.To) || (!r.Inclusive && v < r.To); v += r.Step {
			out = append(out, object.Number(v))
		}
	} else {
		for v := r.From; (r.Inclusive && v >= r.To) || (!r.Inclusive && v > r.To); v += r.Step {
			out = append(out, object.Number(v))
		}
	}
	return out, nil
}

type rangeStepZeroErr struct{}

func (rangeStepZeroErr) Error() string { return "range step must not be zero" }

var errRangeStepZero = rangeStepZeroErr{}

// Promise is the handle produced by calling an async function
// (spec.md §5's cooperative model). This evaluator tier runs async
// function bodies to completion eagerly and hands back an
// already-settled Promise; a real scheduler belongs to internal/interp,
// which can suspend at `await` points once it drives an event loop.
type Promise struct {
	value object.Value
	err   error
}

func (p *Promise) Kind() object.Kind { return "Promise" }
func (p *Promise) String() string    { return "<promise>" }

// Resolve returns the settled value, or re-raises the original error
// (including a propagating *Throw) if the async call failed.
func (p *Promise) Resolve() (object.Value, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.value, nil
}

// iterate normalizes any iterable Value into a concrete slice, per
// spec.md §4.5's `for item in collection` support: arrays, strings
// (by rune), ranges, hash-maps (by key), and sets.
func iterate(v object.Value) ([]object.Value, error) {
	switch c := v.(type) {
	case *object.Array:
		return append([]object.Value(nil), c.Elements...), nil
	case object.String:
		runes := []rune(string(c))
		out := make([]object.Value, len(runes))
		for i, r := range runes {
			out[i] = object.String(string(r))
		}
		return out, nil
	case *Range:
		vals, err := c.Values()
		if err != nil {
			return nil, err
		}
		return vals, nil
	case *object.HashMap:
		return c.Keys(), nil
	case *object.Set:
		return c.Elements(), nil
	default:
		return nil, notIterableErr{kind: string(v.Kind())}
	}
}

type notIterableErr struct{ kind string }

func (e notIterableErr) Error() string { return "value of kind " + e.kind + " is not iterable" }

// memberBuiltin resolves a host-provided method on a scalar/container
// value (e.g. arr.length(), str.upper()), mirroring the native-function
// ABI used for stdlib builtins (spec.md §6). Returns nil when name is
// not a recognized member on recv's kind.
func memberBuiltin(recv object.Value, name string) *object.BuiltinFunction {
	wrap := func(fn func(args []object.Value, line, col int) (object.Value, error)) *object.BuiltinFunction {
		return &object.BuiltinFunction{Name: name, Fn: func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			return fn(args, line, col)
		}}
	}

	switch c := recv.(type) {
	case *object.Array:
		switch name {
		case "length":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				return object.Number(len(c.Elements)), nil
			})
		case "push":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				c.Elements = append(c.Elements, args...)
				return c, nil
			})
		case "pop":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				if len(c.Elements) == 0 {
					return nil, newThrow(errs.EIndexOutOfRange, "pop on empty array", line, col)
				}
				last := c.Elements[len(c.Elements)-1]
				c.Elements = c.Elements[:len(c.Elements)-1]
				return last, nil
			})
		case "sort":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				object.SortValues(c.Elements)
				return c, nil
			})
		case "join":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				sep := ""
				if len(args) > 0 {
					if s, ok := args[0].(object.String); ok {
						sep = string(s)
					}
				}
				out := ""
				for i, el := range c.Elements {
					if i > 0 {
						out += sep
					}
					out += valueToString(el)
				}
				return object.String(out), nil
			})
		}

	case object.String:
		switch name {
		case "length":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				return object.Number(len([]rune(string(c)))), nil
			})
		case "upper":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				return object.String(strings.ToUpper(string(c))), nil
			})
		case "lower":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				return object.String(strings.ToLower(string(c))), nil
			})
		}

	case *object.HashMap:
		switch name {
		case "length":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				return object.Number(c.Len()), nil
			})
		case "keys":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				return object.NewArray(c.Keys()), nil
			})
		case "has":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				if len(args) == 0 {
					return object.Bool(false), nil
				}
				_, ok := c.Get(args[0])
				return object.Bool(ok), nil
			})
		case "delete":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				if len(args) == 0 {
					return object.Bool(false), nil
				}
				return object.Bool(c.Delete(args[0])), nil
			})
		}

	case *object.Set:
		switch name {
		case "length":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				return object.Number(c.Len()), nil
			})
		case "has":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				if len(args) == 0 {
					return object.Bool(false), nil
				}
				return object.Bool(c.Has(args[0])), nil
			})
		case "add":
			return wrap(func(args []object.Value, line, col int) (object.Value, error) {
				for _, a := range args {
					c.Add(a)
				}
				return c, nil
			})
		}
	}
	return nil
}


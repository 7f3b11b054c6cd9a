package stdlib

import (
	"math"

	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/object"
)

// Math builds the `math` library: the numeric primitives spec.md §6
// lists among the bundled stdlib modules.
func Math() *object.Object {
	num1 := func(f func(float64) float64) object.BuiltinFn {
		return func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			n, err := number(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			return object.Number(f(float64(n))), nil
		}
	}
	lib := NewLibrary("math", map[string]object.BuiltinFn{
		"sqrt":  num1(math.Sqrt),
		"abs":   num1(math.Abs),
		"floor": num1(math.Floor),
		"ceil":  num1(math.Ceil),
		"round": num1(math.Round),
		"sin":   num1(math.Sin),
		"cos":   num1(math.Cos),
		"tan":   num1(math.Tan),
		"log":   num1(math.Log),
		"exp":   num1(math.Exp),
		"pow": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			base, err := number(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			exp, err := number(args, 1, line, col)
			if err != nil {
				return nil, err
			}
			return object.Number(math.Pow(float64(base), float64(exp))), nil
		},
		"max": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			a, err := number(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			b, err := number(args, 1, line, col)
			if err != nil {
				return nil, err
			}
			return object.Number(math.Max(float64(a), float64(b))), nil
		},
		"min": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			a, err := number(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			b, err := number(args, 1, line, col)
			if err != nil {
				return nil, err
			}
			return object.Number(math.Min(float64(a), float64(b))), nil
		},
	})
	lib.Set("pi", object.Number(math.Pi))
	lib.Set("e", object.Number(math.E))
	return lib
}

func number(args []object.Value, i, line, col int) (object.Number, error) {
	if i >= len(args) {
		return 0, newArgError("missing numeric argument", line, col)
	}
	n, ok := args[i].(object.Number)
	if !ok {
		return 0, newArgError("expected a Number argument", line, col)
	}
	return n, nil
}

func newArgError(msg string, line, col int) error {
	info := errs.New(errs.EInvalidArgument, msg, line, col)
	return &stdlibError{info: info}
}

type stdlibError struct{ info *errs.ErrorInfo }

func (e *stdlibError) Error() string { return e.info.Error() }

// ErrorInfo exposes the underlying structured error so the evaluator can
// fold a failing builtin call into its Throw channel.
func (e *stdlibError) ErrorInfo() *errs.ErrorInfo { return e.info }

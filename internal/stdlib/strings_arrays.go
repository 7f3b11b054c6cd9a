package stdlib

import (
	"strconv"
	"strings"

	"github.com/glintlang/glint/internal/object"
)

// String builds the `string` library.
func String() *object.Object {
	return NewLibrary("string", map[string]object.BuiltinFn{
		"split": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			s, sep, err := twoStrings(args, line, col)
			if err != nil {
				return nil, err
			}
			parts := strings.Split(s, sep)
			elems := make([]object.Value, len(parts))
			for i, p := range parts {
				elems[i] = object.String(p)
			}
			return object.NewArray(elems), nil
		},
		"trim": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			s, err := str(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			return object.String(strings.TrimSpace(s)), nil
		},
		"contains": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			s, sub, err := twoStrings(args, line, col)
			if err != nil {
				return nil, err
			}
			return object.Bool(strings.Contains(s, sub)), nil
		},
		"replace": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			if len(args) < 3 {
				return nil, newArgError("replace expects (string, old, new)", line, col)
			}
			s, old, err := twoStrings(args, line, col)
			if err != nil {
				return nil, err
			}
			repl, err := str(args, 2, line, col)
			if err != nil {
				return nil, err
			}
			return object.String(strings.ReplaceAll(s, old, repl)), nil
		},
		"to_number": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			s, err := str(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			n, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if perr != nil {
				return nil, newArgError("string is not a valid number", line, col)
			}
			return object.Number(n), nil
		},
	})
}

// Array builds the `array` library.
func Array() *object.Object {
	return NewLibrary("array", map[string]object.BuiltinFn{
		"range": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			n, err := number(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			elems := make([]object.Value, int(n))
			for i := range elems {
				elems[i] = object.Number(i)
			}
			return object.NewArray(elems), nil
		},
		"reverse": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			arr, err := array(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			out := make([]object.Value, len(arr.Elements))
			for i, v := range arr.Elements {
				out[len(out)-1-i] = v
			}
			return object.NewArray(out), nil
		},
		"concat": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			a, err := array(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			b, err := array(args, 1, line, col)
			if err != nil {
				return nil, err
			}
			out := append(append([]object.Value(nil), a.Elements...), b.Elements...)
			return object.NewArray(out), nil
		},
	})
}

func str(args []object.Value, i, line, col int) (string, error) {
	if i >= len(args) {
		return "", newArgError("missing string argument", line, col)
	}
	s, ok := args[i].(object.String)
	if !ok {
		return "", newArgError("expected a String argument", line, col)
	}
	return string(s), nil
}

func twoStrings(args []object.Value, line, col int) (string, string, error) {
	a, err := str(args, 0, line, col)
	if err != nil {
		return "", "", err
	}
	b, err := str(args, 1, line, col)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func array(args []object.Value, i, line, col int) (*object.Array, error) {
	if i >= len(args) {
		return nil, newArgError("missing array argument", line, col)
	}
	a, ok := args[i].(*object.Array)
	if !ok {
		return nil, newArgError("expected an Array argument", line, col)
	}
	return a, nil
}

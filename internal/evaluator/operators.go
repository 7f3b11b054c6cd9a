package evaluator

import (
	"math"

	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/object"
)

// applyBinaryOp implements spec.md §4.3's operator semantics: numeric
// arithmetic, string concatenation (with implicit to-string coercion
// when either side of `+` is a string), comparison, equality, and
// bitwise operators.
func (e *Evaluator) applyBinaryOp(op string, l, r object.Value, line, col int) (object.Value, error) {
	switch op {
	case "+":
		if ls, ok := l.(object.String); ok {
			return ls + object.String(valueToString(r)), nil
		}
		if rs, ok := r.(object.String); ok {
			return object.String(valueToString(l)) + rs, nil
		}
		ln, lok := l.(object.Number)
		rn, rok := r.(object.Number)
		if lok && rok {
			return ln + rn, nil
		}
		return nil, e.throwf(errs.ETypeMismatch, line, col, "'+' requires two numbers or a string operand")

	case "-", "*", "/", "%", "**":
		ln, lok := l.(object.Number)
		rn, rok := r.(object.Number)
		if !lok || !rok {
			return nil, e.throwf(errs.ETypeMismatch, line, col, "'%s' requires two numbers", op)
		}
		switch op {
		case "-":
			return ln - rn, nil
		case "*":
			return ln * rn, nil
		case "/":
			if rn == 0 {
				return nil, e.throwf(errs.EDivisionByZero, line, col, "division by zero")
			}
			return ln / rn, nil
		case "%":
			if rn == 0 {
				return nil, e.throwf(errs.EDivisionByZero, line, col, "modulo by zero")
			}
			return object.Number(math.Mod(float64(ln), float64(rn))), nil
		case "**":
			return object.Number(math.Pow(float64(ln), float64(rn))), nil
		}

	case "==":
		return object.Bool(object.StructuralEqual(l, r)), nil
	case "!=":
		return object.Bool(!object.StructuralEqual(l, r)), nil

	case "<", "<=", ">", ">=":
		c, ok := object.Compare(l, r)
		if !ok {
			return nil, e.throwf(errs.ENotComparable, line, col, "cannot compare values of kind %s and %s", l.Kind(), r.Kind())
		}
		switch op {
		case "<":
			return object.Bool(c < 0), nil
		case "<=":
			return object.Bool(c <= 0), nil
		case ">":
			return object.Bool(c > 0), nil
		case ">=":
			return object.Bool(c >= 0), nil
		}

	case "^^":
		return object.Bool(object.Truthy(l) != object.Truthy(r)), nil

	case "&", "|", "^", "<<", ">>":
		ln, lok := l.(object.Number)
		rn, rok := r.(object.Number)
		if !lok || !rok {
			return nil, e.throwf(errs.ETypeMismatch, line, col, "'%s' requires two numbers", op)
		}
		li, ri := int64(ln), int64(rn)
		switch op {
		case "&":
			return object.Number(float64(li & ri)), nil
		case "|":
			return object.Number(float64(li | ri)), nil
		case "^":
			return object.Number(float64(li ^ ri)), nil
		case "<<":
			return object.Number(float64(li << uint(ri))), nil
		case ">>":
			return object.Number(float64(li >> uint(ri))), nil
		}
	}

	return nil, e.throwf(errs.EInvalidArgument, line, col, "unknown binary operator %q", op)
}

// valueToString renders a value for implicit coercion into a string
// concatenation, using the value model's own Inspect/String rules
// (strings pass through unquoted, everything else uses String()).
func valueToString(v object.Value) string {
	if s, ok := v.(object.String); ok {
		return string(s)
	}
	return v.String()
}

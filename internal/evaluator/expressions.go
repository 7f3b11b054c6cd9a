package evaluator

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/object"
	"github.com/glintlang/glint/internal/pattern"
)

func (e *Evaluator) evalExpression(expr ast.Expression, env *environment.Environment) (object.Value, error) {
	switch x := expr.(type) {
	case *ast.NumberLiteral:
		return object.Number(x.Value), nil
	case *ast.StringLiteral:
		return object.String(x.Value), nil
	case *ast.BoolLiteral:
		return object.Bool(x.Value), nil
	case *ast.NullLiteral:
		return object.Null{}, nil
	case *ast.Identifier:
		if v, ok := env.Get(x.Name); ok {
			return v, nil
		}
		line, col := x.Pos()
		return nil, e.throwf(errs.EUndefinedVariable, line, col, "undefined variable %q", x.Name)
	case *ast.ArrayLit:
		elems := make([]object.Value, len(x.Elements))
		for i, el := range x.Elements {
			v, err := e.evalExpression(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return object.NewArray(elems), nil
	case *ast.HashMapLit:
		m := object.NewHashMap()
		for _, entry := range x.Entries {
			k, err := e.evalExpression(entry.Key, env)
			if err != nil {
				return nil, err
			}
			v, err := e.evalExpression(entry.Value, env)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	case *ast.SetLit:
		s := object.NewSet()
		for _, el := range x.Elements {
			v, err := e.evalExpression(el, env)
			if err != nil {
				return nil, err
			}
			s.Add(v)
		}
		return s, nil
	case *ast.FunctionLit:
		return e.makeFunction(x, env), nil
	case *ast.UnaryExpr:
		return e.evalUnary(x, env)
	case *ast.BinaryExpr:
		return e.evalBinary(x, env)
	case *ast.RangeExpr:
		return e.evalRange(x, env)
	case *ast.IndexExpr:
		return e.evalIndex(x, env)
	case *ast.MemberExpr:
		return e.evalMember(x, env)
	case *ast.CallExpr:
		return e.evalCall(x, env)
	case *ast.AssignStmt:
		return e.evalAssign(x, env)
	case *ast.SporeExpr:
		return e.evalSpore(x, env)
	case *ast.AwaitExpr:
		return e.evalAwait(x, env)
	case *ast.ErrorNode:
		line, col := x.Pos()
		return nil, e.throwf(errs.ESyntaxUnexpectedToken, line, col, "%s", x.Message)
	default:
		return object.Null{}, nil
	}
}

func (e *Evaluator) evalUnary(x *ast.UnaryExpr, env *environment.Environment) (object.Value, error) {
	v, err := e.evalExpression(x.Operand, env)
	if err != nil {
		return nil, err
	}
	line, col := x.Pos()
	switch x.Op {
	case "-":
		n, ok := v.(object.Number)
		if !ok {
			return nil, e.throwf(errs.ETypeMismatch, line, col, "unary - requires a number")
		}
		return -n, nil
	case "+":
		n, ok := v.(object.Number)
		if !ok {
			return nil, e.throwf(errs.ETypeMismatch, line, col, "unary + requires a number")
		}
		return n, nil
	case "!":
		return object.Bool(!object.Truthy(v)), nil
	case "~":
		n, ok := v.(object.Number)
		if !ok {
			return nil, e.throwf(errs.ETypeMismatch, line, col, "~ requires a number")
		}
		return object.Number(float64(^int64(n))), nil
	case "*", "&":
		// Dereference/address-of have no distinct runtime representation
		// in glint's value model; both are identity on the operand.
		return v, nil
	default:
		return nil, e.throwf(errs.EInvalidArgument, line, col, "unknown unary operator %q", x.Op)
	}
}

func (e *Evaluator) evalBinary(x *ast.BinaryExpr, env *environment.Environment) (object.Value, error) {
	// Short-circuit operators evaluate the right side conditionally.
	if x.Op == "&&" {
		l, err := e.evalExpression(x.Left, env)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(l) {
			return object.Bool(false), nil
		}
		r, err := e.evalExpression(x.Right, env)
		if err != nil {
			return nil, err
		}
		return object.Bool(object.Truthy(r)), nil
	}
	if x.Op == "||" {
		l, err := e.evalExpression(x.Left, env)
		if err != nil {
			return nil, err
		}
		if object.Truthy(l) {
			return object.Bool(true), nil
		}
		r, err := e.evalExpression(x.Right, env)
		if err != nil {
			return nil, err
		}
		return object.Bool(object.Truthy(r)), nil
	}

	l, err := e.evalExpression(x.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := e.evalExpression(x.Right, env)
	if err != nil {
		return nil, err
	}
	line, col := x.Pos()
	return e.applyBinaryOp(x.Op, l, r, line, col)
}

func (e *Evaluator) evalRange(x *ast.RangeExpr, env *environment.Environment) (object.Value, error) {
	from, err := e.evalExpression(x.From, env)
	if err != nil {
		return nil, err
	}
	to, err := e.evalExpression(x.To, env)
	if err != nil {
		return nil, err
	}
	step := object.Value(object.Number(1))
	if x.Step != nil {
		step, err = e.evalExpression(x.Step, env)
		if err != nil {
			return nil, err
		}
	}
	fromN, ok1 := from.(object.Number)
	toN, ok2 := to.(object.Number)
	stepN, ok3 := step.(object.Number)
	if !ok1 || !ok2 || !ok3 {
		line, col := x.Pos()
		return nil, e.throwf(errs.ETypeMismatch, line, col, "range bounds and step must be numbers")
	}
	return &Range{From: float64(fromN), To: float64(toN), Step: float64(stepN), Inclusive: x.Inclusive}, nil
}

func (e *Evaluator) evalIndex(x *ast.IndexExpr, env *environment.Environment) (object.Value, error) {
	v, err := e.evalExpression(x.X, env)
	if err != nil {
		return nil, err
	}
	idx, err := e.evalExpression(x.Index, env)
	if err != nil {
		return nil, err
	}
	line, col := x.Pos()
	switch c := v.(type) {
	case *object.Array:
		n, ok := idx.(object.Number)
		if !ok {
			return nil, e.throwf(errs.ETypeMismatch, line, col, "array index must be a number")
		}
		i := int(n)
		if i < 0 || i >= len(c.Elements) {
			return nil, e.throwf(errs.EIndexOutOfRange, line, col, "array index %d out of range (length %d)", i, len(c.Elements))
		}
		return c.Elements[i], nil
	case object.String:
		n, ok := idx.(object.Number)
		if !ok {
			return nil, e.throwf(errs.ETypeMismatch, line, col, "string index must be a number")
		}
		runes := []rune(string(c))
		i := int(n)
		if i < 0 || i >= len(runes) {
			return nil, e.throwf(errs.EIndexOutOfRange, line, col, "string index %d out of range (length %d)", i, len(runes))
		}
		return object.String(string(runes[i])), nil
	case *object.HashMap:
		val, ok := c.Get(idx)
		if !ok {
			return nil, e.throwf(errs.EKeyNotFound, line, col, "key %s not found", object.Inspect(idx))
		}
		return val, nil
	default:
		return nil, e.throwf(errs.ETypeMismatch, line, col, "value of kind %s is not indexable", v.Kind())
	}
}

func (e *Evaluator) evalMember(x *ast.MemberExpr, env *environment.Environment) (object.Value, error) {
	v, err := e.evalExpression(x.X, env)
	if err != nil {
		return nil, err
	}
	line, col := x.Pos()
	switch c := v.(type) {
	case *object.Object:
		val, ok := c.Get(x.Name)
		if !ok {
			return nil, e.throwf(errs.EKeyNotFound, line, col, "object has no field %q", x.Name)
		}
		return val, nil
	case *object.Module:
		val, ok := c.Exports.Get(x.Name)
		if !ok {
			return nil, e.throwf(errs.EKeyNotFound, line, col, "module %q has no export %q", c.Name, x.Name)
		}
		return val, nil
	default:
		if builtin := memberBuiltin(v, x.Name); builtin != nil {
			return builtin, nil
		}
		return nil, e.throwf(errs.ETypeMismatch, line, col, "value of kind %s has no member %q", v.Kind(), x.Name)
	}
}

func (e *Evaluator) evalCall(x *ast.CallExpr, env *environment.Environment) (object.Value, error) {
	line, col := x.Pos()

	// obj.method(args): pass obj as an implicit self-context.
	if member, ok := x.Callee.(*ast.MemberExpr); ok {
		recv, err := e.evalExpression(member.X, env)
		if err != nil {
			return nil, err
		}
		args, err := e.evalArgs(x.Args, env)
		if err != nil {
			return nil, err
		}
		return e.callMethod(recv, member.Name, args, line, col)
	}

	callee, err := e.evalExpression(x.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(x.Args, env)
	if err != nil {
		return nil, err
	}
	return e.Call(callee, args, line, col)
}

func (e *Evaluator) evalArgs(exprs []ast.Expression, env *environment.Environment) ([]object.Value, error) {
	args := make([]object.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.evalExpression(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// callMethod resolves a method on a class instance or a builtin
// member function and invokes it with recv accessible as `self`.
func (e *Evaluator) callMethod(recv object.Value, name string, args []object.Value, line, col int) (object.Value, error) {
	if obj, ok := recv.(*object.Object); ok {
		if m, ok := obj.Get(name); ok {
			return e.Call(m, args, line, col)
		}
	}
	if builtin := memberBuiltin(recv, name); builtin != nil {
		return e.Call(builtin, args, line, col)
	}
	return nil, e.throwf(errs.EKeyNotFound, line, col, "no method %q on value of kind %s", name, recv.Kind())
}

func (e *Evaluator) evalAwait(x *ast.AwaitExpr, env *environment.Environment) (object.Value, error) {
	v, err := e.evalExpression(x.X, env)
	if err != nil {
		return nil, err
	}
	if p, ok := v.(*Promise); ok {
		return p.Resolve()
	}
	return v, nil
}

func (e *Evaluator) evalSpore(x *ast.SporeExpr, env *environment.Environment) (object.Value, error) {
	subject, err := e.evalExpression(x.Subject, env)
	if err != nil {
		return nil, err
	}
	var root *ast.SporeCase
	for i := range x.Cases {
		c := &x.Cases[i]
		if c.IsRoot {
			root = c
			continue
		}
		bindings, ok, err := pattern.Match(e, env, c.Pattern, subject)
		if err != nil {
			return nil, err
		}
		if ok {
			caseEnv := env.NewChild()
			pattern.ApplyBindings(caseEnv, bindings)
			_, v, err := e.evalBlock(c.Body, caseEnv)
			return v, err
		}
	}
	if root != nil {
		_, v, err := e.evalBlock(root.Body, env.NewChild())
		return v, err
	}
	line, col := x.Pos()
	return nil, e.throwf(errs.EInvalidState, line, col, "no spore case matched and no default case was provided")
}

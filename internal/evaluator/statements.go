package evaluator

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/object"
)

// evalStatement evaluates one statement, returning any propagating
// control signal, the statement's value (for expression statements,
// used as the block's trailing value), and an error (a *Throw for
// glint-level exceptions).
func (e *Evaluator) evalStatement(stmt ast.Statement, env *environment.Environment) (control, object.Value, error) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return e.evalVarDecl(s, env)
	case *ast.ConstDecl:
		return e.evalConstDecl(s, env)
	case *ast.ExprStmt:
		v, err := e.evalExpression(s.X, env)
		if err != nil {
			return normal, nil, err
		}
		return normal, v, nil
	case *ast.FunctionLit:
		fn := e.makeFunction(s, env)
		if s.Name != "" {
			env.Define(s.Name, fn, false)
		}
		return normal, fn, nil
	case *ast.ClassDecl:
		e.ClassTable[s.Name] = s
		ctor := e.makeConstructor(s, env)
		env.Define(s.Name, ctor, false)
		return normal, object.Null{}, nil
	case *ast.IfStmt:
		return e.evalIfStmt(s, env)
	case *ast.WhileStmt:
		return e.evalWhileStmt(s, env)
	case *ast.ForStmt:
		return e.evalForStmt(s, env)
	case *ast.ReturnStmt:
		var v object.Value = object.Null{}
		if s.Value != nil {
			var err error
			v, err = e.evalExpression(s.Value, env)
			if err != nil {
				return normal, nil, err
			}
		}
		return control{kind: ctrlReturn, value: v}, v, nil
	case *ast.BreakStmt:
		return control{kind: ctrlBreak}, object.Null{}, nil
	case *ast.ContinueStmt:
		return control{kind: ctrlContinue}, object.Null{}, nil
	case *ast.ThrowStmt:
		v, err := e.evalExpression(s.Value, env)
		if err != nil {
			return normal, nil, err
		}
		line, col := s.Pos()
		info := errs.New(errs.EUserError, object.Inspect(v), line, col)
		return normal, nil, &Throw{Info: info, Value: v}
	case *ast.TryStmt:
		return e.evalTryStmt(s, env)
	case *ast.ImportStmt:
		if e.ImportHook == nil {
			return normal, object.Null{}, nil
		}
		if err := e.ImportHook(s.ModulePath, s.Alias, env); err != nil {
			line, col := s.Pos()
			return normal, nil, e.throwf(errs.ECircularDependency, line, col, "%s", err.Error())
		}
		return normal, object.Null{}, nil
	case *ast.UseStmt:
		if e.UseHook == nil {
			return normal, object.Null{}, nil
		}
		if err := e.UseHook(s.Library, s.Alias, s.SpecificItems, s.SpecificAliases, env); err != nil {
			line, col := s.Pos()
			return normal, nil, e.throwf(errs.EUndefinedVariable, line, col, "%s", err.Error())
		}
		return normal, object.Null{}, nil
	case *ast.ErrorNode:
		line, col := s.Pos()
		return normal, nil, e.throwf(errs.ESyntaxUnexpectedToken, line, col, "%s", s.Message)
	case *ast.AssignStmt:
		v, err := e.evalAssign(s, env)
		if err != nil {
			return normal, nil, err
		}
		return normal, v, nil
	default:
		return normal, object.Null{}, nil
	}
}

func (e *Evaluator) evalVarDecl(s *ast.VarDecl, env *environment.Environment) (control, object.Value, error) {
	var v object.Value = object.Null{}
	if s.Initializer != nil {
		var err error
		v, err = e.evalExpression(s.Initializer, env)
		if err != nil {
			return normal, nil, err
		}
	}
	env.Define(s.Name, v, s.Mutable)
	return normal, v, nil
}

func (e *Evaluator) evalConstDecl(s *ast.ConstDecl, env *environment.Environment) (control, object.Value, error) {
	v, err := e.evalExpression(s.Value, env)
	if err != nil {
		return normal, nil, err
	}
	env.Define(s.Name, v, false)
	return normal, v, nil
}

func (e *Evaluator) evalIfStmt(s *ast.IfStmt, env *environment.Environment) (control, object.Value, error) {
	for _, branch := range s.Branches {
		cond, err := e.evalExpression(branch.Cond, env)
		if err != nil {
			return normal, nil, err
		}
		if object.Truthy(cond) {
			return e.evalBlock(branch.Body, env.NewChild())
		}
	}
	if s.Else != nil {
		return e.evalBlock(s.Else, env.NewChild())
	}
	return normal, object.Null{}, nil
}

func (e *Evaluator) evalBlock(block *ast.Block, env *environment.Environment) (control, object.Value, error) {
	var result object.Value = object.Null{}
	for _, stmt := range block.Statements {
		ctrl, v, err := e.evalStatement(stmt, env)
		if err != nil {
			return normal, nil, err
		}
		if ctrl.kind != ctrlNone {
			return ctrl, v, nil
		}
		result = v
	}
	return normal, result, nil
}

func (e *Evaluator) evalWhileStmt(s *ast.WhileStmt, env *environment.Environment) (control, object.Value, error) {
	for {
		cond, err := e.evalExpression(s.Cond, env)
		if err != nil {
			return normal, nil, err
		}
		if !object.Truthy(cond) {
			break
		}
		ctrl, _, err := e.evalBlock(s.Body, env.NewChild())
		if err != nil {
			return normal, nil, err
		}
		if ctrl.kind == ctrlBreak {
			break
		}
		if ctrl.kind == ctrlReturn {
			return ctrl, ctrl.value, nil
		}
		if e.OnLoopBack != nil {
			e.OnLoopBack(s)
		}
	}
	return normal, object.Null{}, nil
}

func (e *Evaluator) evalForStmt(s *ast.ForStmt, env *environment.Environment) (control, object.Value, error) {
	coll, err := e.evalExpression(s.Collection, env)
	if err != nil {
		return normal, nil, err
	}
	items, iterErr := iterate(coll)
	if iterErr != nil {
		line, col := s.Pos()
		if _, ok := iterErr.(rangeStepZeroErr); ok {
			return normal, nil, e.throwf(errs.EInvalidArgument, line, col, "%s", iterErr.Error())
		}
		return normal, nil, e.throwf(errs.ENotIterable, line, col, "%s", iterErr.Error())
	}
	for _, item := range items {
		loopEnv := env.NewChild()
		loopEnv.Define(s.IterName, item, true)
		ctrl, _, err := e.evalBlock(s.Body, loopEnv)
		if err != nil {
			return normal, nil, err
		}
		if ctrl.kind == ctrlBreak {
			break
		}
		if ctrl.kind == ctrlReturn {
			return ctrl, ctrl.value, nil
		}
		if e.OnLoopBack != nil {
			e.OnLoopBack(s)
		}
	}
	return normal, object.Null{}, nil
}

func (e *Evaluator) evalTryStmt(s *ast.TryStmt, env *environment.Environment) (control, object.Value, error) {
	e.Errors.EnterTry()
	ctrl, _, err := e.evalBlock(s.Try, env.NewChild())
	e.Errors.ExitTry()

	var pending error
	if t, ok := err.(*Throw); ok {
		if s.HasCatch {
			e.Errors.EnterCatch(s.CatchVar)
			catchEnv := env.NewChild()
			if s.CatchVar != "" {
				catchEnv.Define(s.CatchVar, t.Value, true)
			}
			ctrl, _, err = e.evalBlock(s.Catch, catchEnv)
			e.Errors.ExitCatch()
			if tt, ok := err.(*Throw); ok {
				pending = tt
			} else if err != nil {
				pending = err
			}
		} else {
			pending = t
		}
	} else if err != nil {
		pending = err
	}

	if s.Finally != nil {
		e.Errors.EnterFinally()
		fctrl, _, ferr := e.evalBlock(s.Finally, env.NewChild())
		e.Errors.ExitFinally()
		if ferr != nil {
			// A throw inside finally supersedes any in-flight throw
			// (spec.md §7).
			return normal, nil, ferr
		}
		if fctrl.kind != ctrlNone {
			// finally's own control flow (return/break/continue)
			// supersedes the try/catch outcome.
			return fctrl, fctrl.value, nil
		}
	}

	if pending != nil {
		if !s.HasCatch {
			if t, ok := pending.(*Throw); ok {
				e.Errors.ReportUncaught(t.Info)
			}
		}
		return normal, nil, pending
	}
	return ctrl, ctrl.value, nil
}

func (e *Evaluator) evalAssign(s *ast.AssignStmt, env *environment.Environment) (object.Value, error) {
	v, err := e.evalExpression(s.Value, env)
	if err != nil {
		return nil, err
	}
	switch target := s.Target.(type) {
	case *ast.Identifier:
		if mutable, ok := env.IsMutable(target.Name); ok && !mutable {
			line, col := s.Pos()
			return nil, e.throwf(errs.EImmutableAssignment, line, col, "cannot assign to immutable binding %q", target.Name)
		}
		if !env.Assign(target.Name, v) {
			line, col := s.Pos()
			return nil, e.throwf(errs.EUndefinedVariable, line, col, "undefined variable %q", target.Name)
		}
		return v, nil
	case *ast.IndexExpr:
		container, err := e.evalExpression(target.X, env)
		if err != nil {
			return nil, err
		}
		idx, err := e.evalExpression(target.Index, env)
		if err != nil {
			return nil, err
		}
		if err := e.setIndex(container, idx, v, target); err != nil {
			return nil, err
		}
		return v, nil
	case *ast.MemberExpr:
		container, err := e.evalExpression(target.X, env)
		if err != nil {
			return nil, err
		}
		if obj, ok := container.(*object.Object); ok {
			obj.Set(target.Name, v)
			return v, nil
		}
		line, col := s.Pos()
		return nil, e.throwf(errs.ETypeMismatch, line, col, "cannot set member %q on a non-object value", target.Name)
	default:
		line, col := s.Pos()
		return nil, e.throwf(errs.ETypeMismatch, line, col, "invalid assignment target")
	}
}

func (e *Evaluator) setIndex(container, idx, v object.Value, node ast.Node) error {
	line, col := node.Pos()
	switch c := container.(type) {
	case *object.Array:
		n, ok := idx.(object.Number)
		if !ok {
			return e.throwf(errs.ETypeMismatch, line, col, "array index must be a number")
		}
		i := int(n)
		if i < 0 || i >= len(c.Elements) {
			return e.throwf(errs.EIndexOutOfRange, line, col, "array index %d out of range", i)
		}
		c.Elements[i] = v
		return nil
	case *object.HashMap:
		c.Set(idx, v)
		return nil
	default:
		return e.throwf(errs.ETypeMismatch, line, col, "value is not indexable")
	}
}

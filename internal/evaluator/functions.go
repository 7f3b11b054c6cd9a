package evaluator

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/object"
)

func (e *Evaluator) makeFunction(lit *ast.FunctionLit, env *environment.Environment) *object.Function {
	params := make([]object.FunctionParam, len(lit.Params))
	for i, p := range lit.Params {
		params[i] = object.FunctionParam{Name: p.Name, Type: p.Type}
	}
	return &object.Function{
		Name:   lit.Name,
		Params: params,
		Body:   lit.Body,
		Env:    env,
		Async:  lit.Async,
	}
}

// makeConstructor builds the callable bound under a class's name: a
// BuiltinFunction that allocates a fresh instance Object, wires every
// method declared in the class body (and its parent chain) as a
// Function closing over an environment where `self` resolves to the
// new instance, then invokes `init` (if present) with the call args.
func (e *Evaluator) makeConstructor(decl *ast.ClassDecl, classEnv *environment.Environment) *object.BuiltinFunction {
	return &object.BuiltinFunction{
		Name: decl.Name,
		Fn: func(interp interface{}, args []object.Value, line, col int) (object.Value, error) {
			inst := object.NewObject()
			inst.Set("__class_name__", object.String(decl.Name))
			inst.Set("__type__", object.String("Object"))
			if err := e.wireClassMethods(decl, classEnv, inst); err != nil {
				return nil, err
			}
			if initFn, ok := inst.Get("init"); ok {
				if fn, ok := initFn.(*object.Function); ok {
					if _, err := e.callFunction(fn, args, line, col); err != nil {
						return nil, err
					}
				}
			}
			return inst, nil
		},
	}
}

func (e *Evaluator) wireClassMethods(decl *ast.ClassDecl, classEnv *environment.Environment, inst *object.Object) error {
	if decl.Parent != "" {
		if parentDecl, ok := e.ClassTable[decl.Parent]; ok {
			if err := e.wireClassMethods(parentDecl, classEnv, inst); err != nil {
				return err
			}
		}
	}
	methodEnv := classEnv.NewChild()
	methodEnv.Define("self", inst, false)
	for _, stmt := range decl.Body {
		if fn, ok := stmt.(*ast.FunctionLit); ok {
			inst.Set(fn.Name, e.makeFunction(fn, methodEnv))
		}
	}
	return nil
}

// callFunction binds args positionally into a fresh child of the
// closure's defining environment, pushes a CallFrame, evaluates the
// body, and pops the frame. Returning inside the body unwinds to here.
func (e *Evaluator) callFunction(fn *object.Function, args []object.Value, line, col int) (object.Value, error) {
	if len(e.CallStack) >= MaxCallDepth {
		return nil, e.throwf(errs.EStackOverflow, line, col, "maximum call depth (%d) exceeded", MaxCallDepth)
	}
	defEnv, _ := fn.Env.(*environment.Environment)
	if defEnv == nil {
		defEnv = environment.New()
	}
	callEnv := defEnv.NewChild()
	for i, p := range fn.Params {
		var v object.Value = object.Null{}
		if i < len(args) {
			v = args[i]
		}
		callEnv.Define(p.Name, v, true)
	}

	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	e.CallStack = append(e.CallStack, errs.StackFrame{FunctionName: name, FileName: e.CurrentFile, Line: line})
	defer func() { e.CallStack = e.CallStack[:len(e.CallStack)-1] }()

	body, _ := fn.Body.(*ast.Block)
	if body == nil {
		return object.Null{}, nil
	}
	ctrl, v, err := e.evalBlock(body, callEnv)
	if err != nil {
		// The innermost frame the throw unwinds through records the
		// stack; outer frames leave that capture in place.
		if t, ok := err.(*Throw); ok && t.Info.StackTrace == nil && e.Errors != nil && e.Errors.StackTraceEnabled {
			t.Info.StackTrace = append([]errs.StackFrame(nil), e.CallStack...)
		}
		return nil, err
	}
	if ctrl.kind == ctrlReturn {
		return ctrl.value, nil
	}
	return v, nil
}

// Call is the exported entry point the adaptive executor and host
// builtins use to invoke any callable Value.
func (e *Evaluator) Call(callee object.Value, args []object.Value, line, col int) (object.Value, error) {
	switch fn := callee.(type) {
	case *object.Function:
		if e.OnCall != nil {
			if node, ok := fn.Body.(ast.Node); ok {
				e.OnCall(node, args)
			} else {
				e.OnCall(nil, args)
			}
		}
		if fn.Async {
			v, err := e.callFunction(fn, args, line, col)
			return &Promise{value: v, err: err}, nil
		}
		if e.TieredCall != nil {
			if v, handled, err := e.TieredCall(fn, args, line, col); handled {
				return v, err
			}
		}
		return e.callFunction(fn, args, line, col)
	case *object.BuiltinFunction:
		v, err := fn.Fn(e, args, line, col)
		if err == nil {
			return v, nil
		}
		return nil, e.wrapBuiltinError(err, line, col)
	default:
		return nil, e.throwf(errs.ENotCallable, line, col, "value of kind %s is not callable", callee.Kind())
	}
}

// builtinErrorInfo is implemented by stdlib errors that already carry
// a structured ErrorInfo (see internal/stdlib), letting their code,
// category, and suggestion survive the trip into the Throw channel.
type builtinErrorInfo interface {
	ErrorInfo() *errs.ErrorInfo
}

func (e *Evaluator) wrapBuiltinError(err error, line, col int) error {
	if t, ok := err.(*Throw); ok {
		return t
	}
	if ie, ok := err.(builtinErrorInfo); ok {
		info := ie.ErrorInfo()
		return &Throw{Info: info, Value: &object.Error{Info: info, Msg: info.Message}}
	}
	return newThrow(errs.EInternal, err.Error(), line, col)
}

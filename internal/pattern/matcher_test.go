package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/object"
	"github.com/glintlang/glint/internal/pattern"
)

// literalEvaluator evaluates only the literal-expression shapes this
// test needs, standing in for the tree-walking evaluator (pattern's
// Evaluator interface is narrow precisely so a test double like this
// can implement it without pulling in internal/evaluator).
type literalEvaluator struct{}

func (literalEvaluator) EvalExpr(e ast.Expression, env *environment.Environment) (object.Value, error) {
	switch x := e.(type) {
	case *ast.NumberLiteral:
		return object.Number(x.Value), nil
	case *ast.Identifier:
		v, _ := env.Get(x.Name)
		return v, nil
	case *ast.BinaryExpr:
		l, _ := literalEvaluator{}.EvalExpr(x.Left, env)
		r, _ := literalEvaluator{}.EvalExpr(x.Right, env)
		ln, rn := l.(object.Number), r.(object.Number)
		switch x.Op {
		case ">":
			return object.Bool(ln > rn), nil
		}
	}
	return object.Null{}, nil
}

func numberLit(v float64) *ast.NumberLiteral { return &ast.NumberLiteral{Value: v} }

func TestMatchWildcardAlwaysSucceeds(t *testing.T) {
	env := environment.New()
	b, ok, err := pattern.Match(literalEvaluator{}, env, &ast.WildcardPattern{}, object.Number(42))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, b)
}

func TestMatchLiteralPattern(t *testing.T) {
	env := environment.New()
	pat := &ast.LiteralPattern{Value: numberLit(0)}

	_, ok, err := pattern.Match(literalEvaluator{}, env, pat, object.Number(0))
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = pattern.Match(literalEvaluator{}, env, pat, object.Number(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchGuardPattern(t *testing.T) {
	env := environment.New()
	pat := &ast.GuardPattern{
		Inner: &ast.BindPattern{Name: "n"},
		Cond:  &ast.BinaryExpr{Op: ">", Left: &ast.Identifier{Name: "n"}, Right: numberLit(0)},
	}

	b, ok, err := pattern.Match(literalEvaluator{}, env, pat, object.Number(7))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, object.Number(7), b["n"])

	_, ok, err = pattern.Match(literalEvaluator{}, env, pat, object.Number(-3))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchArrayDestructureWithRest(t *testing.T) {
	env := environment.New()
	pat := &ast.ArrayDestructurePattern{
		Elements: []ast.Pattern{&ast.BindPattern{Name: "head"}},
		Rest:     "tail",
	}
	arr := object.NewArray([]object.Value{object.Number(1), object.Number(2), object.Number(3)})

	b, ok, err := pattern.Match(literalEvaluator{}, env, pat, arr)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, object.Number(1), b["head"])
	rest, ok := b["tail"].(*object.Array)
	require.True(t, ok)
	assert.Equal(t, []object.Value{object.Number(2), object.Number(3)}, rest.Elements)
}

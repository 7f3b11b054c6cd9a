package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/bytecode"
	"github.com/glintlang/glint/internal/environment"
	"github.com/glintlang/glint/internal/object"
	"github.com/glintlang/glint/internal/parser"
)

// funcBody parses source and returns the body and parameter names of
// its single top-level function literal, for feeding to Compile.
func funcBody(t *testing.T, source string) (*ast.Block, []string) {
	t.Helper()
	prog := parser.Parse(source)
	require.Len(t, prog.Block.Statements, 1)
	lit, ok := prog.Block.Statements[0].(*ast.FunctionLit)
	require.True(t, ok, "expected a function literal statement, got %T", prog.Block.Statements[0])
	names := make([]string, len(lit.Params))
	for i, p := range lit.Params {
		names[i] = p.Name
	}
	return lit.Body, names
}

func TestCompileAndRunSumLoop(t *testing.T) {
	body, params := funcBody(t, `function sum(n) {
  let s = 0;
  for i in 0..n {
    s = s + i;
  }
  return s;
}`)
	fn, err := bytecode.Compile(body, params)
	require.NoError(t, err)

	vm := bytecode.New(environment.New(), nil)
	result, err := vm.Run(fn, []object.Value{object.Number(1000)})
	require.NoError(t, err)
	assert.Equal(t, object.Number(499500), result)
}

func TestCompileAndRunIfElse(t *testing.T) {
	body, params := funcBody(t, `function abs(n) {
  if (n < 0) {
    return 0 - n;
  }
  return n;
}`)
	fn, err := bytecode.Compile(body, params)
	require.NoError(t, err)

	vm := bytecode.New(environment.New(), nil)
	result, err := vm.Run(fn, []object.Value{object.Number(-7)})
	require.NoError(t, err)
	assert.Equal(t, object.Number(7), result)

	result, err = vm.Run(fn, []object.Value{object.Number(7)})
	require.NoError(t, err)
	assert.Equal(t, object.Number(7), result)
}

func TestCompileRejectsUnsupportedConstruct(t *testing.T) {
	body, params := funcBody(t, `function classify(v) {
  spore v {
    0 => "zero",
    _ => "other"
  }
}`)
	_, err := bytecode.Compile(body, params)
	require.Error(t, err)
}

func TestDeoptOnTypeMismatch(t *testing.T) {
	body, params := funcBody(t, `function addOne(n) {
  return n + 1;
}`)
	fn, err := bytecode.Compile(body, params)
	require.NoError(t, err)

	vm := bytecode.New(environment.New(), nil)
	_, err = vm.Run(fn, []object.Value{object.String("not a number")})
	require.Error(t, err)
	_, ok := err.(*bytecode.DeoptError)
	assert.True(t, ok, "expected *bytecode.DeoptError, got %T", err)
}

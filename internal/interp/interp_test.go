package interp_test

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintlang/glint/internal/errs"
	"github.com/glintlang/glint/internal/evaluator"
	"github.com/glintlang/glint/internal/interp"
)

func run(t *testing.T, adaptive bool, source string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cfg := interp.DefaultConfig()
	cfg.AdaptiveExecution = adaptive
	i := interp.New(cfg, interp.WithOutput(&out))
	_, err := i.Run(source)
	return out.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, true, `print(1 + 2 * 3);`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestClosuresAndAssignment(t *testing.T) {
	src := `
let make = function(x) { return function(y) { return x + y; }; };
let add5 = make(5);
print(add5(3));
print(add5(10));
`
	out, err := run(t, true, src)
	require.NoError(t, err)
	assert.Equal(t, "8\n15\n", out)
}

func TestExceptionRoundTrip(t *testing.T) {
	src := `try { throw "boom"; } catch (e) { print(e); } finally { print("done"); }`
	out, err := run(t, true, src)
	require.NoError(t, err)
	assert.Equal(t, "boom\ndone\n", out)
}

func TestPatternMatching(t *testing.T) {
	src := `
let classify = function(v) {
  spore v {
    0 => "zero",
    n if n > 0 => "pos",
    _ => "neg"
  }
};
print(classify(0)); print(classify(7)); print(classify(-3));
`
	out, err := run(t, true, src)
	require.NoError(t, err)
	assert.Equal(t, "zero\npos\nneg\n", out)
}

func TestTierEquivalenceLoop(t *testing.T) {
	// sum is called often enough to promote its call site past the
	// bytecode tier's warm threshold (so adaptive=true actually runs it
	// compiled, not just through the tree walker) while keeping the
	// result identical to the tree-walking tier.
	src := `
function sum(n) {
  let s = 0;
  for i in 0..n {
    s = s + i;
  }
  return s;
}
let total = 0;
for call in 0..20 {
  total = total + sum(1000);
}
print(total);
`
	for _, adaptive := range []bool{false, true} {
		out, err := run(t, adaptive, src)
		require.NoError(t, err)
		assert.Equal(t, "9990000\n", out, "adaptive=%v", adaptive)
	}
}

func TestAdaptiveExecutorPromotesCallSiteAndLoopTrace(t *testing.T) {
	src := `
function sum(n) {
  let s = 0;
  for i in 0..n {
    s = s + i;
  }
  return s;
}
let total = 0;
for call in 0..150 {
  total = total + sum(50);
}
print(total);
`
	var out bytes.Buffer
	cfg := interp.DefaultConfig()
	cfg.AdaptiveExecution = true
	i := interp.New(cfg, interp.WithOutput(&out))
	_, err := i.Run(src)
	require.NoError(t, err)
	assert.Equal(t, "183750\n", out.String())

	assert.Greater(t, i.Adaptive.Stats.BytecodeCalls, 0, "sum should have run on the bytecode tier at least once")
	if runtime.GOARCH == "amd64" {
		assert.Greater(t, i.Adaptive.Stats.JITCalls, 0, "sum's loop should have closed a trace and reached the JIT tier")
	}
}

func TestUndefinedVariable(t *testing.T) {
	_, err := run(t, true, `print(x);`)
	require.Error(t, err)
	throw, ok := err.(*evaluator.Throw)
	require.True(t, ok, "expected *evaluator.Throw, got %T", err)
	assert.True(t, strings.Contains(throw.Info.Message, "undefined variable"))
	assert.True(t, throw.Info.Code >= 2000 && throw.Info.Code < 3000)
	assert.Equal(t, errs.Semantic, throw.Info.Category)
}

func TestHotSpotPromotionIsSemanticsPreserving(t *testing.T) {
	src := `
let fib = function(n) {
  if (n < 2) { return n; }
  return fib(n - 1) + fib(n - 2);
};
print(fib(12));
`
	disabled, err := run(t, false, src)
	require.NoError(t, err)
	enabled, err := run(t, true, src)
	require.NoError(t, err)
	assert.Equal(t, disabled, enabled)
}

package hotspot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glintlang/glint/internal/hotspot"
	"github.com/glintlang/glint/internal/object"
)

func sampleN(r *hotspot.Record, n int, inputs ...object.Value) {
	for i := 0; i < n; i++ {
		r.Sample(inputs, nil)
	}
}

func TestPromotionThresholds(t *testing.T) {
	tracker := hotspot.New()
	r := tracker.RecordFor("site-a")

	sampleN(r, 9, object.Number(1))
	assert.Equal(t, hotspot.Cold, r.Tier)

	r.Sample([]object.Value{object.Number(1)}, nil)
	assert.Equal(t, hotspot.Warm, r.Tier)

	sampleN(r, 90, object.Number(1))
	// a consistently-typed call site reaching the hot threshold with a
	// stable type profile promotes straight to Compiled.
	assert.Equal(t, hotspot.Compiled, r.Tier)
}

func TestPromotesToCompiledOnlyWithStableTypeProfile(t *testing.T) {
	tracker := hotspot.New()
	r := tracker.RecordFor("site-b")
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			r.Sample([]object.Value{object.String("x")}, nil)
		} else {
			r.Sample([]object.Value{object.Number(1)}, nil)
		}
	}
	assert.False(t, r.StableTypeProfile(), "alternating argument kinds never settle into one shape")
	assert.Equal(t, hotspot.Hot, r.Tier)

	sampleN(r, 20, object.Number(1))
	assert.True(t, r.StableTypeProfile())
	assert.Equal(t, hotspot.Compiled, r.Tier)
}

func TestBlacklistAfterThreeDeopts(t *testing.T) {
	tracker := hotspot.New()
	r := tracker.RecordFor("site-c")
	sampleN(r, 100, object.Number(1))
	r.Deopt()
	r.Deopt()
	assert.False(t, r.Blacklisted)
	r.Deopt()
	assert.True(t, r.Blacklisted)
	assert.Equal(t, hotspot.Bytecode(), r.Tier)
}

func TestDecayDropsColdRecordsBackToCold(t *testing.T) {
	tracker := hotspot.New()
	r := tracker.RecordFor("site-d")
	sampleN(r, 10, object.Number(1))
	assert.Equal(t, hotspot.Warm, r.Tier)
	for i := 0; i < 10; i++ {
		tracker.Tick()
	}
	assert.Equal(t, hotspot.Cold, r.Tier)
}

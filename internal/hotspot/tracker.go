// Package hotspot implements the per-node execution counters and
// promotion policy that drive tiering decisions in the adaptive
// executor, per spec.md §4.8.
package hotspot

import "github.com/glintlang/glint/internal/object"

// Tier names a promotion level. Zero value is Cold.
type Tier int

const (
	Cold Tier = iota
	Warm
	Hot
	Compiled
)

func (t Tier) String() string {
	switch t {
	case Warm:
		return "warm"
	case Hot:
		return "hot"
	case Compiled:
		return "compiled"
	default:
		return "cold"
	}
}

const (
	warmThreshold = 10
	hotThreshold  = 100
	// stableSampleWindow is N in "type-profile stable across the last
	// N >= 20 samples".
	stableSampleWindow = 20
	// deoptBlacklistLimit is the number of deopts within a window that
	// pins a node to the bytecode tier permanently.
	deoptBlacklistLimit = 3
	// decayPerTick is subtracted from execution_count on every
	// adaptive-executor tick, letting cold nodes fall back out of tier.
	decayPerTick = 1
)

// typeVector is a coarse type-tag fingerprint of one call/loop
// execution's inputs and result, used to judge type-profile stability.
type typeVector string

func vectorOf(values ...object.Value) typeVector {
	b := make([]byte, 0, len(values))
	for _, v := range values {
		if v == nil {
			b = append(b, 'x')
			continue
		}
		b = append(b, v.Kind()[0])
	}
	return typeVector(b)
}

// Record tracks one AST node's (call site or loop back-edge) execution
// history.
type Record struct {
	ExecutionCount int
	Tier           Tier
	Blacklisted    bool
	deoptsInWindow int
	samples        []typeVector
}

// Sample feeds one execution's input/result types into the node's
// history and updates its tier.
func (r *Record) Sample(inputs []object.Value, result object.Value) {
	r.ExecutionCount++
	v := vectorOf(append(append([]object.Value(nil), inputs...), result)...)
	r.samples = append(r.samples, v)
	if len(r.samples) > stableSampleWindow {
		r.samples = r.samples[len(r.samples)-stableSampleWindow:]
	}
	r.promote()
}

func (r *Record) promote() {
	if r.Blacklisted {
		r.Tier = Bytecode()
		return
	}
	switch {
	case r.ExecutionCount >= hotThreshold && r.StableTypeProfile():
		r.Tier = Compiled
	case r.ExecutionCount >= hotThreshold:
		r.Tier = Hot
	case r.ExecutionCount >= warmThreshold:
		r.Tier = Warm
	default:
		r.Tier = Cold
	}
}

// Bytecode is the tier a blacklisted node is pinned to: hot enough to
// have been promoted once, but no longer trusted for JIT compilation.
func Bytecode() Tier { return Hot }

// StableTypeProfile reports whether the last stableSampleWindow
// samples all share the same type-tag vector.
func (r *Record) StableTypeProfile() bool {
	if len(r.samples) < stableSampleWindow {
		return false
	}
	first := r.samples[0]
	for _, s := range r.samples[1:] {
		if s != first {
			return false
		}
	}
	return true
}

// Deopt records a deoptimization event. After deoptBlacklistLimit
// deopts within the current window the node is pinned to the
// bytecode tier permanently (spec.md §4.8).
func (r *Record) Deopt() {
	r.deoptsInWindow++
	if r.deoptsInWindow >= deoptBlacklistLimit {
		r.Blacklisted = true
		r.Tier = Bytecode()
	}
}

// Decay ages the record by one adaptive-executor tick. Once the count
// falls below the warm threshold, a non-blacklisted record reverts to
// Cold and its deopt window resets; compiled code the adaptive
// executor has already cached for the node is not dropped.
func (r *Record) Decay() {
	r.ExecutionCount -= decayPerTick
	if r.ExecutionCount < 0 {
		r.ExecutionCount = 0
	}
	if r.ExecutionCount < warmThreshold && !r.Blacklisted {
		r.Tier = Cold
		r.deoptsInWindow = 0
	}
}

// Tracker owns one Record per tracked AST node, keyed by the node's
// stable identity (its pointer, boxed as interface{} by the caller).
type Tracker struct {
	records map[interface{}]*Record
}

func New() *Tracker {
	return &Tracker{records: make(map[interface{}]*Record)}
}

// RecordFor returns the node's Record, creating it on first use.
func (t *Tracker) RecordFor(node interface{}) *Record {
	r, ok := t.records[node]
	if !ok {
		r = &Record{}
		t.records[node] = r
	}
	return r
}

// Tick decays every tracked node by one adaptive-executor cycle.
func (t *Tracker) Tick() {
	for _, r := range t.records {
		r.Decay()
	}
}

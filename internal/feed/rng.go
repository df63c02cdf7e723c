// Package feed implements the producer side of the simulation: a
// pluggable random-number source and the feeder goroutines that turn it
// into a stream of synthetic orders pushed onto the ingress queue.
//
// Grounded on original_source/include/utils/random/{IRNG,RealRNG,
// MockRNG}.h -- the spec treats "random number source" as an external
// collaborator (spec.md §1) with a named two-method contract; this
// fills that contract the way the original implementation does.
package feed

import (
	"math/rand"
	"sync"
)

// RNG is the capability a feeder needs: uniform reals for prices,
// uniform ints for quantities and side selection.
type RNG interface {
	UniformReal(min, max float64) float64
	UniformInt(min, max int) int
}

// RealRNG draws from math/rand's default algorithm, seeded once at
// construction. Safe for concurrent use: each call locks a private
// mutex, mirroring the original's single std::default_random_engine
// guarded per-feeder (one RealRNG per feeder is the intended usage, but
// sharing one across feeders must not race).
type RealRNG struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRealRNG creates a RealRNG seeded with seed.
func NewRealRNG(seed int64) *RealRNG {
	return &RealRNG{src: rand.New(rand.NewSource(seed))}
}

var _ RNG = (*RealRNG)(nil)

func (r *RealRNG) UniformReal(min, max float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + r.src.Float64()*(max-min)
}

func (r *RealRNG) UniformInt(min, max int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if max <= min {
		return min
	}
	return min + r.src.Intn(max-min+1)
}

// MockRNG replays a fixed, deterministic sequence of values for tests:
// every call (uniform_real or uniform_int alike) consumes the next
// value in the list, looping once the end is reached.
//
// Grounded on original_source/src/utils/random/MockRNG.cpp: both
// uniform_real and uniform_int ignore their bounds and return the next
// stored value, truncated for the int case.
type MockRNG struct {
	mu     sync.Mutex
	values []float64
	index  int
}

// NewMockRNG creates a MockRNG that replays values in order, wrapping
// around once exhausted. Panics if values is empty.
func NewMockRNG(values []float64) *MockRNG {
	if len(values) == 0 {
		panic("feed: MockRNG requires at least one value")
	}
	return &MockRNG{values: values}
}

var _ RNG = (*MockRNG)(nil)

func (m *MockRNG) next() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.values[m.index]
	m.index = (m.index + 1) % len(m.values)
	return v
}

func (m *MockRNG) UniformReal(_, _ float64) float64 { return m.next() }

func (m *MockRNG) UniformInt(_, _ int) int { return int(m.next()) }

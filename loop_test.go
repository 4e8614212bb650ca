package sapling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// countingBackend records the ticks the loop drives into a backend.
type countingBackend struct {
	*SimpleBackend
	log *[]string
}

func (b *countingBackend) Step(dt float64) {
	*b.log = append(*b.log, "step")
	b.SimpleBackend.Step(dt)
}

func (b *countingBackend) PostUpdate(dt float64) {
	*b.log = append(*b.log, "post")
}

// newLoopScene returns a scene whose backend, fixed hook and update hook all
// append to log. A body is attached so the backend exists.
func newLoopScene(t *testing.T, log *[]string) *Scene {
	t.Helper()
	s := newTestScene(t, WithBackendFactory(func(logger *zap.Logger) Backend {
		return &countingBackend{SimpleBackend: NewSimpleBackend(logger), log: log}
	}))
	addBody(t, s, "body", ShapeStatic, 0, 0, Rect{Width: 1, Height: 1})
	s.OnFixedUpdate = func() { *log = append(*log, "fixed") }
	s.OnUpdate = func(float64) { *log = append(*log, "update") }
	return s
}

func TestLoopDefaults(t *testing.T) {
	l := NewLoop()
	assert.InDelta(t, 1.0/DefaultTickRate, l.FixedDelta(), 1e-12)
	assert.Equal(t, 1.0, l.GameSpeed())
	assert.False(t, l.IsPaused())
	assert.Zero(t, l.Alpha())
}

func TestLoopAdvanceRunsWholeTicks(t *testing.T) {
	var log []string
	s := newLoopScene(t, &log)
	l := NewLoop(WithTickRate(4), WithScenes(s))

	assert.Equal(t, 2, l.Advance(0.5))
	assert.Equal(t, []string{"fixed", "step", "fixed", "step", "post", "update"}, log)

	log = nil
	assert.Equal(t, 0, l.Advance(0.125))
	assert.Equal(t, []string{"update"}, log, "no post pass without a fixed tick")
	assert.InDelta(t, 0.5, l.Alpha(), 1e-12)

	assert.Equal(t, 1, l.Advance(0.125))
	assert.InDelta(t, 0, l.Alpha(), 1e-12)
}

func TestLoopUpdateReceivesScaledDelta(t *testing.T) {
	s := newTestScene(t)
	var deltas []float64
	s.OnUpdate = func(dt float64) { deltas = append(deltas, dt) }
	l := NewLoop(WithTickRate(4), WithScenes(s))

	l.SetGameSpeed(2)
	assert.Equal(t, 2, l.Advance(0.25))

	l.SetGameSpeed(-1)
	assert.Equal(t, 0.0, l.GameSpeed())
	assert.Equal(t, 0, l.Advance(10))

	assert.Equal(t, []float64{0.5, 0}, deltas)
}

func TestLoopPaused(t *testing.T) {
	var log []string
	s := newLoopScene(t, &log)
	l := NewLoop(WithTickRate(4), WithScenes(s))

	l.SetPaused(true)
	assert.True(t, l.IsPaused())
	assert.Equal(t, 0, l.Advance(1))
	assert.Equal(t, []string{"update"}, log)

	l.SetPaused(false)
	assert.Equal(t, 1, l.Advance(0.25))
}

func TestLoopDropsTicksPastMaxSteps(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := newTestScene(t)
	fixed := 0
	s.OnFixedUpdate = func() { fixed++ }
	l := NewLoop(WithTickRate(4), WithMaxSteps(2), WithLoopLogger(zap.New(core)), WithScenes(s))

	assert.Equal(t, 2, l.Advance(1.0))
	assert.Equal(t, 2, fixed)
	assert.InDelta(t, 0, l.Alpha(), 1e-12, "excess time is dropped")

	entries := logs.FilterMessage("fixed update falling behind").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["dropped_ticks"])
}

func TestLoopDrivesRegisteredScenes(t *testing.T) {
	a := newTestScene(t)
	b, err := NewScene(t.Name() + "/b")
	require.NoError(t, err)
	defer b.Destroy()

	var order []string
	a.OnFixedUpdate = func() { order = append(order, "a") }
	b.OnFixedUpdate = func() { order = append(order, "b") }

	l := NewLoop(WithTickRate(4))
	l.Advance(0.25)
	assert.Equal(t, []string{"a", "b"}, order, "scenes tick in creation order")

	b.Disable()
	order = nil
	l.Advance(0.25)
	assert.Equal(t, []string{"a"}, order)
}

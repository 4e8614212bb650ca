package sapling

import "go.uber.org/zap"

// defaultMaxSteps caps the fixed updates run for one frame so a long stall
// does not snowball into an ever longer catch-up.
const defaultMaxSteps = 8

// Loop drives every registered scene with a fixed-step accumulator. Each
// Advance runs as many FixedUpdate ticks as the elapsed time allows, then a
// PostFixedUpdate pass over all scenes, then one variable Update.
type Loop struct {
	tickRate    float64
	accumulator float64
	maxSteps    int
	speed       float64
	paused      bool
	logger      *zap.Logger

	// scenes returns the scenes to drive; defaults to the registry.
	scenes func() []*Scene
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithTickRate sets the number of fixed updates per second.
func WithTickRate(hz float64) LoopOption {
	return func(l *Loop) {
		if hz > 0 {
			l.tickRate = hz
		}
	}
}

// WithMaxSteps caps the fixed updates run per Advance.
func WithMaxSteps(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.maxSteps = n
		}
	}
}

// WithLoopLogger sets the logger used to report dropped ticks.
func WithLoopLogger(logger *zap.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithScenes drives the given scenes instead of every registered scene.
func WithScenes(scenes ...*Scene) LoopOption {
	return func(l *Loop) {
		l.scenes = func() []*Scene { return scenes }
	}
}

// NewLoop creates a loop at DefaultTickRate driving all registered scenes.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		tickRate: DefaultTickRate,
		maxSteps: defaultMaxSteps,
		speed:    1,
		logger:   zap.NewNop(),
		scenes:   Scenes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FixedDelta returns the duration of one fixed tick in seconds.
func (l *Loop) FixedDelta() float64 {
	return 1 / l.tickRate
}

// SetPaused stops fixed ticks; Update still runs with a zero delta.
func (l *Loop) SetPaused(paused bool) {
	l.paused = paused
}

func (l *Loop) IsPaused() bool {
	return l.paused
}

// SetGameSpeed scales the time fed to the loop. Negative values clamp to 0.
func (l *Loop) SetGameSpeed(speed float64) {
	l.speed = max(speed, 0)
}

func (l *Loop) GameSpeed() float64 {
	return l.speed
}

// Advance moves the simulation forward by frameDelta wall-clock seconds and
// returns the number of fixed ticks run.
func (l *Loop) Advance(frameDelta float64) int {
	delta := frameDelta * l.speed
	if l.paused || delta < 0 {
		delta = 0
	}

	scenes := l.scenes()
	step := l.FixedDelta()
	l.accumulator += delta
	steps := 0
	for l.accumulator >= step {
		if steps == l.maxSteps {
			dropped := int(l.accumulator / step)
			l.logger.Warn("fixed update falling behind", zap.Int("dropped_ticks", dropped))
			l.accumulator -= float64(dropped) * step
			break
		}
		l.accumulator -= step
		steps++
		for _, s := range scenes {
			s.FixedUpdate()
		}
	}
	if steps > 0 {
		for _, s := range scenes {
			s.PostFixedUpdate(step)
		}
	}
	for _, s := range scenes {
		s.Update(delta)
	}
	return steps
}

// Alpha returns how far, in [0, 1), the simulation is into the next fixed tick.
func (l *Loop) Alpha() float64 {
	return l.accumulator * l.tickRate
}

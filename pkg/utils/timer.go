package utils

import (
	"sync"
	"time"
)

// Phase records the duration of one named stage of a run, such as the
// dry-run and fill passes of an explosion.
type Phase struct {
	Name      string
	StartTime time.Time
	Duration  time.Duration
	completed bool
}

// Timer collects named phase durations. It is safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	name   string
	start  time.Time
	phases []*Phase
	index  map[string]*Phase
}

// NewTimer creates a timer for the named run.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
		index: make(map[string]*Phase),
	}
}

// StartPhase begins timing a named phase.
func (t *Timer) StartPhase(name string) *PhaseTimer {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := &Phase{Name: name, StartTime: time.Now()}
	t.phases = append(t.phases, p)
	t.index[name] = p
	return &PhaseTimer{timer: t, name: name}
}

// StopPhase stops the named phase and returns its duration. Stopping an
// unknown or already-stopped phase returns zero.
func (t *Timer) StopPhase(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.index[name]
	if !ok || p.completed {
		return 0
	}
	p.Duration = time.Since(p.StartTime)
	p.completed = true
	return p.Duration
}

// PhaseDuration returns the recorded duration of a completed phase.
func (t *Timer) PhaseDuration(name string) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.index[name]
	if !ok || !p.completed {
		return 0, false
	}
	return p.Duration, true
}

// Total returns the elapsed time since the timer was created.
func (t *Timer) Total() time.Duration {
	return time.Since(t.start)
}

// Report logs all completed phases through the given logger.
func (t *Timer) Report(logger Logger) {
	if logger == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.phases {
		if p.completed {
			logger.Debug("%s: phase %s took %s", t.name, p.Name, p.Duration)
		}
	}
}

// PhaseTimer is a handle for stopping one phase, convenient with defer.
type PhaseTimer struct {
	timer *Timer
	name  string
}

// Stop stops the phase. Safe to call multiple times; only the first call
// has effect.
func (pt *PhaseTimer) Stop() time.Duration {
	return pt.timer.StopPhase(pt.name)
}

package procman

import "sync"

// runnable is the non-generic face every Runner[T] presents to the Engine
// so a slice of heterogeneous runners can be driven uniformly.
type runnable interface {
	deliver(ev any)
	run() bool
	name() string
}

// Engine is the generic runner described in spec §4.B: it owns the set of
// registered procedure instances, delivers triggered events to all of
// them in FIFO order, and steps still-running instances in registration
// order (the order NewRunner was called) once the event queue for the
// tick has drained. The order in which instances were launched plays no
// part in the stepping order.
//
// The Engine is single-threaded by contract (all Init/Step/React/Then
// calls happen on the task-loop goroutine), but Trigger may legitimately
// be called from other goroutines (a timer firing, a gitc message
// handler), so the pending-event queue is guarded by a mutex.
type Engine struct {
	mu         sync.Mutex
	pending    []pendingEvent
	delivering bool

	regMu     sync.Mutex
	runners   []runnable
	runnerSet map[runnable]bool
}

type pendingEvent struct {
	ev any
}

// New creates an empty Engine.
func New() *Engine {
	return &Engine{
		runnerSet: make(map[runnable]bool),
	}
}

// register adds a runner to the engine's tracked set exactly once. Called
// by NewRunner; not part of the public API since runners always belong to
// exactly one engine for their lifetime.
func (e *Engine) register(r runnable) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	if e.runnerSet[r] {
		return
	}
	e.runnerSet[r] = true
	e.runners = append(e.runners, r)
}

// Trigger posts an event for delivery to every registered procedure
// instance whose React implementation cares about it. Safe to call from
// any goroutine (timer callbacks, gitc message handlers) or from within a
// handler that is itself running on the task loop: in the latter case the
// event is queued behind the current delivery, so a procedure can never
// reenter its own handler as a side effect of a trigger it issued.
func (e *Engine) Trigger(ev any) {
	e.mu.Lock()
	e.pending = append(e.pending, pendingEvent{ev: ev})
	e.mu.Unlock()
}

// Tick drains the pending event queue (delivering each event to every
// registered runner in FIFO order, including events enqueued by handlers
// invoked earlier in the same Tick), then calls run() on every registered
// runner in registration order, which is not the order of launch.
func (e *Engine) Tick() {
	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.mu.Unlock()
			break
		}
		next := e.pending[0]
		e.pending = e.pending[1:]
		e.mu.Unlock()

		e.regMu.Lock()
		targets := append([]runnable(nil), e.runners...)
		e.regMu.Unlock()
		for _, r := range targets {
			r.deliver(next.ev)
		}
	}

	e.regMu.Lock()
	targets := append([]runnable(nil), e.runners...)
	e.regMu.Unlock()
	for _, r := range targets {
		r.run()
	}
}

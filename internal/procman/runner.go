package procman

import "gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/monitoring"

// lifecycle is the three-state machine from spec §3: idle (no invocation
// in flight), running (launched, awaiting step/react), completed. A
// completed invocation immediately becomes idle again so the same Runner
// can be relaunched by a later procedure instance.
type lifecycle int

const (
	lcIdle lifecycle = iota
	lcRunning
)

// Runner binds a Procedure implementation to a typed Future, giving the
// generic Engine something concrete to launch/step/react/complete. Each
// procedure kind in package rrc owns exactly one Runner (composition —
// nested launches — relaunches the subordinate kind's own Runner, which
// is reused across invocations).
type Runner[T any] struct {
	procName string
	imsi     string
	engine   *Engine
	proc     Procedure
	valueOf  func() T

	state  lifecycle
	future *Future[T]
}

// NewRunner creates a Runner bound to engine and registers it so the
// engine's Tick can step it and broadcast events to it. valueOf is called
// once the procedure reports Success, to snapshot its declared output
// value (spec invariant 3: a fulfilled future's value matches the
// producing procedure's declared output type).
func NewRunner[T any](engine *Engine, procName string, proc Procedure, valueOf func() T) *Runner[T] {
	r := &Runner[T]{
		procName: procName,
		engine:   engine,
		proc:     proc,
		valueOf:  valueOf,
		state:    lcIdle,
	}
	engine.register(r)
	return r
}

func (r *Runner[T]) name() string { return r.procName }

// WithImsi tags this Runner's metrics with the owning UE's IMSI, matching
// every other per-UE label already used throughout internal/monitoring.
// Returns the same Runner so it can chain off NewRunner at the call site.
func (r *Runner[T]) WithImsi(imsi string) *Runner[T] {
	r.imsi = imsi
	return r
}

// IsIdle reports that no invocation of this procedure is currently active.
func (r *Runner[T]) IsIdle() bool { return r.state == lcIdle }

// IsRunning reports that an invocation is in flight.
func (r *Runner[T]) IsRunning() bool { return r.state == lcRunning }

// CurrentFuture returns the future of an already-running invocation, so a
// caller that finds Launch refused (spec §5 "cell-selection yields to an
// in-progress invocation rather than starting a new one") can still wait
// on the invocation that is already in flight.
func (r *Runner[T]) CurrentFuture() (*Future[T], bool) {
	if r.state != lcRunning {
		return nil, false
	}
	return r.future, true
}

// Launch starts a new invocation. It fails (returns nil, false) if an
// invocation is already running — the engine's sole contention-prevention
// mechanism (spec §4.B, §5 "mutual exclusion of procedures").
func (r *Runner[T]) Launch(args any) (*Future[T], bool) {
	if r.state == lcRunning {
		monitoring.ProcedureLaunches.WithLabelValues(r.imsi, r.procName, "false").Inc()
		return nil, false
	}
	monitoring.ProcedureLaunches.WithLabelValues(r.imsi, r.procName, "true").Inc()
	r.state = lcRunning
	r.future = &Future[T]{}
	fut := r.future
	outcome := r.proc.Init(args)
	r.settle(outcome)
	return fut, true
}

// run advances the procedure by one tick. It is invoked by the Engine and
// only does work while the procedure is running; it never delivers a step
// while a triggered event is mid-delivery for this tick, since Engine.Tick
// drains all pending events before stepping any runner.
func (r *Runner[T]) run() bool {
	if r.state != lcRunning {
		return false
	}
	outcome := r.proc.Step()
	r.settle(outcome)
	return r.state == lcRunning
}

// Run is the public equivalent of run, exposed so a parent procedure that
// wants to drive a subordinate synchronously within its own Step can do
// so without waiting for the next Engine.Tick. Returns true while still
// running, false once complete — matching spec §4.B's run() → bool.
func (r *Runner[T]) Run() bool { return r.run() }

func (r *Runner[T]) deliver(ev any) {
	if r.state != lcRunning {
		return
	}
	outcome := r.proc.React(ev)
	r.settle(outcome)
}

func (r *Runner[T]) settle(outcome Outcome) {
	if !outcome.IsComplete() {
		return
	}
	monitoring.ProcedureOutcomes.WithLabelValues(r.imsi, r.procName, outcome.String()).Inc()
	var val T
	if outcome == Success && r.valueOf != nil {
		val = r.valueOf()
	}
	r.state = lcIdle
	if hook, ok := r.proc.(ThenHook); ok {
		hook.Then(outcome)
	}
	r.future.fulfill(outcome, val)
}

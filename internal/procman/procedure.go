package procman

// Procedure is the capability set every procedure kind must expose: init
// runs once at launch, step is polled once per tick while running, and
// react handles a triggered event. Unknown event types should be ignored
// (return Yield), never turned into an Error outcome.
type Procedure interface {
	Init(args any) Outcome
	Step() Outcome
	React(ev any) Outcome
}

// ThenHook is implemented by procedures that need a side-effecting
// completion callback (timer cleanup, buffered-state teardown) run before
// observers are notified of the outcome.
type ThenHook interface {
	Then(o Outcome)
}

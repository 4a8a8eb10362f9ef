package simrt

import (
	"time"
)

// ctrlKind tags a ctrlMsg.
type ctrlKind uint8

const (
	ctrlSuspend ctrlKind = iota
	ctrlDone
	ctrlPanic
)

// ctrlMsg is sent by a task goroutine back to the executor's run loop over
// the shared control channel, handing the baton back.
type ctrlMsg struct {
	id    uint64
	kind  ctrlKind
	panic any
}

// task is one cooperatively-scheduled unit of work (C4 data model). Each
// task is a real goroutine, but at most one task goroutine is ever
// actually executing user code at a time: the executor hands it the
// baton by sending on resumeCh, and does not send to any other task's
// resumeCh, or touch any shared runtime state, until that same task
// hands the baton back over the control channel (see the concurrency
// translation note in SPEC_FULL.md §4.4). This is what lets every other
// file in this package mutate shared state (the ready queue, the timer
// wheel, the network registry) without a mutex: exactly one goroutine
// ever holds the baton, and the channel handoff is the happens-before
// edge the Go memory model needs.
//
// A task is never force-resumed outside of this handoff: there is no
// mechanism to interrupt a parked task asynchronously, matching Go's
// inability to abort a goroutine mid-stack. A task that loses a
// Timeout race, or that is never woken because its owning simulation
// has already returned from BlockOn, simply stays parked; see
// Handle.Timeout and DESIGN.md for the consequences of this choice.
type task struct {
	id       uint64
	resumeCh chan struct{}
}

// executor is the cooperative scheduler (C4): a ready queue, a timer
// wheel, and the baton-passing machinery that drives task goroutines.
// Adapted from eventloop's run loop (loop.go) — same drain-then-advance
// shape — generalized from "callbacks on a channel" to "goroutines
// parked on channels", since the domain here calls for real Go
// functions as tasks rather than posted closures.
type executor struct {
	clk   *clock
	wheel *timerWheel

	control chan ctrlMsg

	ready     []*task
	nextReady []*task

	completionListeners map[uint64]func()
	finished             map[uint64]struct{}

	nextTaskID uint64

	state  runtimeState
	logger Logger

	deadlocked bool
}

// newExecutor constructs an idle executor.
func newExecutor(clk *clock, wheel *timerWheel, logger Logger) *executor {
	return &executor{
		clk:                  clk,
		wheel:                wheel,
		control:              make(chan ctrlMsg),
		completionListeners:  make(map[uint64]func()),
		finished:              make(map[uint64]struct{}),
		logger:               logger,
	}
}

// enqueueNext appends t to the next drain pass. Called from executor
// context (timer fire, completion listener) or from a task's own
// goroutine while it holds the baton (a direct wakeup, e.g. a byte pipe
// write); both are safe under the single-baton invariant above.
//
// A task already recorded in finished is never re-enqueued: Timeout's
// two independent wakeup paths (the timer and the child's completion
// listener) can both fire for the same parent task when a child
// happens to settle its own race on the same tick, and the loser of
// that redundant pair must be a silent no-op rather than a send on a
// resumeCh nobody is left to receive.
func (e *executor) enqueueNext(t *task) {
	if _, done := e.finished[t.id]; done {
		return
	}
	e.nextReady = append(e.nextReady, t)
}

// newTask allocates a task and starts its (parked) goroutine. fn runs
// with the given Handle once the task is first scheduled.
func (e *executor) newTask(h *Handle, fn func(Environment)) *task {
	e.nextTaskID++
	t := &task{id: e.nextTaskID, resumeCh: make(chan struct{})}
	h.task = t
	go func() {
		<-t.resumeCh
		var panicVal any
		func() {
			defer func() { panicVal = recover() }()
			fn(h)
		}()
		if panicVal != nil {
			e.control <- ctrlMsg{id: t.id, kind: ctrlPanic, panic: panicVal}
		} else {
			e.control <- ctrlMsg{id: t.id, kind: ctrlDone}
		}
	}()
	return t
}

// onCompletion registers a one-shot listener invoked when task id
// completes, whether by finishing normally or panicking. If id has
// already finished, fn runs immediately instead of being registered, so
// callers never race a task that completes before they get a chance to
// listen. Used by Timeout and by Future.Wait.
func (e *executor) onCompletion(id uint64, fn func()) {
	if _, done := e.finished[id]; done {
		fn()
		return
	}
	e.completionListeners[id] = fn
}

// run drives the executor until the root task completes or a deadlock
// is detected, mirroring spec §4.4's block_on loop: drain the ready
// queue to quiescence, then advance the clock to the earliest pending
// deadline and repeat.
func (e *executor) run(root *task) error {
	e.state = StateRunning
	e.ready = append(e.ready, root)
	rootDone := false
	var rootErr error

	e.onCompletion(root.id, func() { rootDone = true })

	for !rootDone {
		e.drainPass()

		if len(e.nextReady) > 0 {
			e.ready, e.nextReady = e.nextReady, e.ready[:0]
			continue
		}

		deadline, ok := e.wheel.peekEarliest()
		if !ok {
			e.deadlocked = true
			rootErr = ErrExecutorDeadlock
			break
		}

		e.logger.Debug("advancing clock", F("from", e.clk.Now()), F("to", deadline))
		e.clk.advanceTo(deadline)
		fired := e.wheel.popReady(e.clk.Now())
		for _, entry := range fired {
			entry.wake()
		}
		e.ready, e.nextReady = e.nextReady, e.ready[:0]
	}

	e.state = StateTerminated
	return rootErr
}

// drainPass polls every task present in the ready queue at the start of
// the pass exactly once, in FIFO order. Tasks spawned or woken during
// the pass land in nextReady and are not polled again until the next
// pass (spec §4.4 step 2/3).
func (e *executor) drainPass() {
	for _, t := range e.ready {
		t.resumeCh <- struct{}{}
		msg := <-e.control
		switch msg.kind {
		case ctrlDone:
			e.finished[msg.id] = struct{}{}
			if fn, ok := e.completionListeners[msg.id]; ok {
				delete(e.completionListeners, msg.id)
				fn()
			}
		case ctrlPanic:
			e.finished[msg.id] = struct{}{}
			if fn, ok := e.completionListeners[msg.id]; ok {
				delete(e.completionListeners, msg.id)
				fn()
			}
			e.logger.Error("task panicked", F("task", msg.id), F("panic", msg.panic))
		case ctrlSuspend:
			// nothing to do here: the task registered its own wakeup
			// source before yielding the baton.
		}
	}
	e.ready = e.ready[:0]
}

// Handle is the concrete Environment implementation bound to a single
// task (C8). Cloning a Handle (assigning it to a new variable) is safe
// and cheap — every field is a shared pointer — but a Handle's blocking
// operations (Delay, DelayFrom, Timeout, and Accept/Read on the
// listeners and streams it creates) must only be invoked by the task
// that owns it, since they park that task's goroutine specifically.
type Handle struct {
	exec  *executor
	net   *network
	fault *faultInjector
	clk   *clock
	task  *task
}

var _ Environment = (*Handle)(nil)

// suspend registers interest via register, yields the baton back to the
// executor, and parks until the task is rescheduled. register must
// arrange for the task to eventually land in the executor's nextReady
// queue (directly, or via a timer/network wakeup) — otherwise the task
// parks forever, surfacing as ErrExecutorDeadlock if nothing else is
// runnable either.
func (h *Handle) suspend(register func()) {
	register()
	h.exec.control <- ctrlMsg{id: h.task.id, kind: ctrlSuspend}
	<-h.task.resumeCh
}

// withChildHandle returns a new Handle sharing this one's runtime wiring
// but not yet bound to a task; newTask binds it.
func (h *Handle) withChildHandle() *Handle {
	return &Handle{exec: h.exec, net: h.net, fault: h.fault, clk: h.clk}
}

// Spawn implements Environment. It returns ErrSpawnAfterShutdown once
// the executor has terminated, the same state check eventloop.Loop.Submit
// performs before pushing onto its task queue.
func (h *Handle) Spawn(fn func(Environment)) error {
	if h.exec.state == StateTerminated {
		h.logger().Warn("spawn after shutdown")
		return ErrSpawnAfterShutdown
	}
	child := h.withChildHandle()
	t := h.exec.newTask(child, fn)
	h.exec.enqueueNext(t)
	return nil
}

func (h *Handle) logger() Logger { return h.exec.logger }

// Now implements Environment.
func (h *Handle) Now() Instant {
	return h.clk.Now()
}

// Delay implements Environment.
func (h *Handle) Delay(deadline Instant) {
	h.suspend(func() {
		entry := h.exec.wheel.insert(deadline, func() { h.exec.enqueueNext(h.task) })
		if !deadline.After(h.clk.Now()) {
			// Already due: still defer to the next drain pass (invariant
			// I2 says time never needs to advance for this), rather than
			// returning inline.
			h.exec.wheel.cancel(entry)
			h.exec.enqueueNext(h.task)
		}
	})
}

// DelayFrom implements Environment.
func (h *Handle) DelayFrom(d time.Duration) {
	h.Delay(h.clk.Now().Add(d))
}

// Timeout implements Environment. It races fn, run in a child task,
// against a delay of d: whichever finishes first decides the outcome.
// If the delay wins, the child task is not forcibly stopped — Go gives
// no way to abort a goroutine mid-stack — it is simply abandoned: the
// executor keeps scheduling it as an ordinary orphaned task, and its
// eventual result is discarded. This is the same shape as the common
// Go idiom of racing a result channel against ctx.Done() and leaving
// the slower goroutine to finish in the background.
func (h *Handle) Timeout(d time.Duration, fn func(Environment) error) error {
	child := h.withChildHandle()
	var innerErr error
	childTask := h.exec.newTask(child, func(env Environment) {
		innerErr = fn(env)
	})
	h.exec.enqueueNext(childTask)

	deadline := h.clk.Now().Add(d)
	timerEntry := h.exec.wheel.insert(deadline, func() { h.exec.enqueueNext(h.task) })

	raceDone := false
	h.exec.onCompletion(childTask.id, func() {
		if raceDone {
			return
		}
		raceDone = true
		h.exec.wheel.cancel(timerEntry)
		h.exec.enqueueNext(h.task)
	})

	h.suspend(func() {})

	if !raceDone {
		raceDone = true
		return ErrElapsed
	}
	return innerErr
}

// Bind implements Environment.
func (h *Handle) Bind(addr Address) (Listener, error) {
	return h.net.bind(h, addr)
}

// Connect implements Environment.
func (h *Handle) Connect(addr Address) (Stream, error) {
	return h.net.connect(h, addr)
}

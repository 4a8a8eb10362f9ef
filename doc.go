// Package simrt provides a deterministic simulation runtime for
// distributed and network-oriented applications, in the style of
// FoundationDB's simulation testing.
//
// # Architecture
//
// Application code is written against the [Environment] capability
// contract: task spawning, wall-clock time, delays, timeouts, and
// TCP-style listeners and streams. Two implementations of that
// contract exist: [RealEnvironment], a thin pass-through to the host
// OS, and [DeterministicRuntime]'s [Handle], which replaces time,
// scheduling, and networking with in-memory, seed-driven substitutes.
//
// A [DeterministicRuntime] is built around a single-threaded
// cooperative [executor] that drives tasks to quiescence before
// consulting a [timerWheel] for the next logical instant, exactly
// mirroring the seed fed to its [rng]. Given a fixed seed, the entire
// sequence of task interleavings, fault injections, and byte
// deliveries is reproducible across runs — the "failure at seed = N"
// diagnostic this package builds toward.
//
// # Concurrency Model
//
// Tasks are goroutines, not polled futures: Go has no first-class
// poll-based future type, so [DeterministicRuntime] realizes single-
// threaded cooperative scheduling by passing a baton between task
// goroutines. Exactly one task's user code runs at a time; any
// blocking handle call (delay, timeout, accept, read, waiting on a
// Future) hands the baton back to the executor and parks the calling
// goroutine until the scheduler resumes it. Connect and write never
// block. See executor.go for the full account.
//
// # Determinism Contract
//
// The set of points at which the fault injector is consulted (see
// fault.go) is part of the public determinism contract: adding or
// removing an observation point changes the seed-to-behavior mapping
// for every existing regression test pinned to a seed, and must be
// treated as a breaking change.
//
// # Usage
//
//	rt, err := simrt.NewWithSeed(1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h := rt.Handle()
//	err = rt.BlockOn(func(h simrt.Environment) {
//	    ln, err := h.Bind(addr)
//	    ...
//	})
//
// # Error Types
//
// The package surfaces a small, kind-based error taxonomy
// ([ErrAddressInUse], [ErrConnectionRefused], [ErrBrokenPipe],
// [ErrElapsed], [ErrRuntimeBuild], [ErrSpawnAfterShutdown],
// [ErrExecutorDeadlock]), all matchable via [errors.Is].
package simrt

package simrt

import (
	"errors"
	"fmt"
)

// Sentinel errors for the runtime's error taxonomy (spec §7). Every
// error the deterministic runtime itself produces satisfies errors.Is
// against exactly one of these via wrapping, except the plain io.EOF a
// stream Read returns at end of stream — nothing is silently swallowed.
var (
	// ErrAddressInUse is returned by Bind when the address is already bound.
	ErrAddressInUse = errors.New("simrt: address in use")

	// ErrConnectionRefused is returned by Connect when the target address
	// has no listener, or the listener's inbound channel has closed.
	ErrConnectionRefused = errors.New("simrt: connection refused")

	// ErrBrokenPipe is returned by Accept when the listener's channel has
	// closed, by stream Read/Write once this side has been shut down, and
	// by stream Write once the peer has shut down. A Read after the peer
	// has shut down returns io.EOF once buffered bytes are drained.
	ErrBrokenPipe = errors.New("simrt: broken pipe")

	// ErrElapsed is returned by Timeout when the inner operation does not
	// complete before the deadline.
	ErrElapsed = errors.New("simrt: deadline exceeded")

	// ErrRuntimeBuild is returned by New/NewWithSeed on construction failure.
	ErrRuntimeBuild = errors.New("simrt: runtime build failed")

	// ErrSpawnAfterShutdown is returned by Spawn once the executor has
	// stopped accepting work.
	ErrSpawnAfterShutdown = errors.New("simrt: spawn after shutdown")

	// ErrExecutorDeadlock is returned by BlockOn when the ready queue is
	// empty, no timers are pending, and the root task has not completed.
	// Fatal: always returned, never silently absorbed.
	ErrExecutorDeadlock = errors.New("simrt: executor deadlock: no ready tasks and no pending timers")
)

// WrapError wraps an error with a message, preserving the cause chain so
// errors.Is/errors.As continue to match the original sentinel.
//
//	WrapError("bind 127.0.0.1:8080", ErrAddressInUse)
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}

// OpError describes a failed operation against an Address, mirroring the
// shape of net.OpError closely enough that application code written
// against [Environment] can pattern-match on it uniformly across the
// deterministic and real environments.
type OpError struct {
	Op   string
	Addr Address
	Err  error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Addr == (Address{}) {
		return fmt.Sprintf("simrt: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("simrt: %s %s: %v", e.Op, e.Addr, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As matching.
func (e *OpError) Unwrap() error {
	return e.Err
}

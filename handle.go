package simrt

import (
	"fmt"
	"io"
	"time"
)

// Address is a socket-address value (spec §3). Equality is the only
// relevant operation — addresses are opaque keys, never interpreted.
type Address struct {
	IP   string
	Port int
}

// String renders the address as "ip:port".
func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.IP, a.Port)
}

// Environment is the capability contract applications are written
// against (spec §6): task spawning, wall-clock time, delays, timeouts,
// and TCP-style listeners/streams. Both DeterministicRuntime's Handle
// and RealEnvironment satisfy it, so application code compiles against
// either unmodified.
type Environment interface {
	// Spawn schedules fn to run as an independent task. No handle is
	// returned; fn must be self-contained (spec §4.4). Returns
	// ErrSpawnAfterShutdown if the executor has already terminated.
	Spawn(fn func(Environment)) error

	// Now returns the current Instant.
	Now() Instant

	// Delay blocks the calling task until the given Instant is reached.
	Delay(deadline Instant)

	// DelayFrom is sugar for Delay(Now() + d).
	DelayFrom(d time.Duration)

	// Timeout races fn against a delay of d. If fn returns before the
	// delay elapses, Timeout returns fn's error. Otherwise Timeout
	// returns ErrElapsed; fn keeps running as an orphaned task (Go has
	// no way to abort it mid-stack) and its eventual result is discarded.
	Timeout(d time.Duration, fn func(Environment) error) error

	// Bind registers addr in the network, returning a Listener, or
	// ErrAddressInUse if addr is already bound.
	Bind(addr Address) (Listener, error)

	// Connect establishes a connection to addr, returning a Stream, or
	// ErrConnectionRefused if addr is unbound.
	Connect(addr Address) (Stream, error)
}

// Listener accepts inbound connections on a bound Address.
type Listener interface {
	// Accept blocks until a new connection arrives, or the listener's
	// backing channel closes (ErrBrokenPipe).
	Accept() (Stream, Address, error)
	LocalAddr() Address
	TTL() uint32
	SetTTL(ttl uint32)
	Close() error
}

// Stream is a full-duplex, ordered byte connection.
type Stream interface {
	io.Reader
	io.Writer
	LocalAddr() Address
	PeerAddr() Address
	Shutdown() error
}

// TimeoutValue is Timeout's generic sibling: Environment.Timeout
// cannot itself be generic (Go forbids generic interface methods), so
// this free function adapts a value-returning operation onto it,
// following the same "race a delay against fn" semantics as
// original_source's spawn_with_result helper adapts a plain future into
// one with a result.
func TimeoutValue[T any](env Environment, d time.Duration, fn func(Environment) (T, error)) (T, error) {
	var result T
	err := env.Timeout(d, func(e Environment) error {
		v, err := fn(e)
		result = v
		return err
	})
	return result, err
}

// Future is a handle to a spawned task's eventual result, returned by
// SpawnWithResult. Grounded on original_source/src/lib.rs's
// spawn_with_result, which wraps a plain future with a one-shot result
// channel via remote_handle; Future plays the same role here, adapted
// so that waiting on it goes through the baton handshake (suspend/
// resume) rather than a raw channel receive, which would starve the
// executor if the waiting task never yields the baton back.
type Future[T any] struct {
	resultCh chan T
	value    T
	received bool
	exec     *executor
	taskID   uint64
}

// SpawnWithResult spawns fn as an independent task and returns a Future
// that yields its result. Call Wait from the same Environment's task
// tree to retrieve it.
func SpawnWithResult[T any](env Environment, fn func(Environment) T) *Future[T] {
	fut := &Future[T]{resultCh: make(chan T, 1)}
	if h, ok := env.(*Handle); ok {
		fut.exec = h.exec
		child := h.withChildHandle()
		t := h.exec.newTask(child, func(e Environment) {
			fut.resultCh <- fn(e)
		})
		fut.taskID = t.id
		h.exec.enqueueNext(t)
		return fut
	}
	_ = env.Spawn(func(e Environment) { fut.resultCh <- fn(e) })
	return fut
}

// Wait blocks the calling task until f's result is available. Under a
// DeterministicRuntime this suspends cooperatively (via env's Handle);
// under RealEnvironment it is a plain channel receive, since real tasks
// are independently OS-scheduled and have no shared baton to starve.
func (f *Future[T]) Wait(env Environment) T {
	if f.received {
		return f.value
	}
	if h, ok := env.(*Handle); ok && h.exec == f.exec {
		h.suspend(func() {
			h.exec.onCompletion(f.taskID, func() { h.exec.enqueueNext(h.task) })
		})
	}
	f.value = <-f.resultCh
	f.received = true
	return f.value
}

package simrt

import (
	"context"
	"net"
	"strconv"
	"time"
)

// RealEnvironment is a thin pass-through Environment backed by actual
// goroutines, the real wall clock, and real TCP sockets. Its behavior
// is deliberately out of scope for this module (spec §1's "the
// production adapter's internal behavior"): it exists only so
// application code written against Environment compiles and runs
// unmodified outside of a simulation, and is exercised only by a
// compile-time interface assertion, not by behavioral tests.
type RealEnvironment struct{}

var _ Environment = RealEnvironment{}

// Spawn implements Environment by starting a real goroutine. A real
// goroutine can always be started, so this never returns an error.
func (RealEnvironment) Spawn(fn func(Environment)) error {
	go fn(RealEnvironment{})
	return nil
}

// Now implements Environment using the real wall clock. The returned
// Instant is relative to the Unix epoch, so Instants from
// RealEnvironment and from a DeterministicRuntime are never comparable.
func (RealEnvironment) Now() Instant {
	return Instant{elapsed: time.Duration(time.Now().UnixNano())}
}

// Delay implements Environment using a real timer.
func (RealEnvironment) Delay(deadline Instant) {
	d := deadline.elapsed - time.Duration(time.Now().UnixNano())
	if d > 0 {
		time.Sleep(d)
	}
}

// DelayFrom implements Environment using a real timer.
func (RealEnvironment) DelayFrom(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Timeout implements Environment using context.WithTimeout.
func (RealEnvironment) Timeout(d time.Duration, fn func(Environment) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(RealEnvironment{}) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrElapsed
	}
}

// Bind implements Environment using a real TCP listener.
func (RealEnvironment) Bind(addr Address) (Listener, error) {
	ln, err := net.Listen("tcp", addr.String())
	if err != nil {
		return nil, &OpError{Op: "bind", Addr: addr, Err: err}
	}
	return &realListener{ln: ln}, nil
}

// Connect implements Environment using a real TCP dial.
func (RealEnvironment) Connect(addr Address) (Stream, error) {
	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		return nil, &OpError{Op: "connect", Addr: addr, Err: err}
	}
	return &realStream{conn: conn}, nil
}

// realListener adapts a *net.TCPListener (or any net.Listener) to Listener.
type realListener struct {
	ln  net.Listener
	ttl uint32
}

var _ Listener = (*realListener)(nil)

func (l *realListener) Accept() (Stream, Address, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, Address{}, &OpError{Op: "accept", Err: err}
	}
	return &realStream{conn: conn}, parseAddr(conn.RemoteAddr()), nil
}

func (l *realListener) LocalAddr() Address  { return parseAddr(l.ln.Addr()) }
func (l *realListener) TTL() uint32         { return l.ttl }
func (l *realListener) SetTTL(ttl uint32)   { l.ttl = ttl }
func (l *realListener) Close() error        { return l.ln.Close() }

// realStream adapts a net.Conn to Stream.
type realStream struct {
	conn net.Conn
}

var _ Stream = (*realStream)(nil)

func (s *realStream) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *realStream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *realStream) LocalAddr() Address          { return parseAddr(s.conn.LocalAddr()) }
func (s *realStream) PeerAddr() Address           { return parseAddr(s.conn.RemoteAddr()) }
func (s *realStream) Shutdown() error             { return s.conn.Close() }

// parseAddr converts a net.Addr into this package's Address value.
func parseAddr(a net.Addr) Address {
	host, portStr, err := net.SplitHostPort(a.String())
	if err != nil {
		return Address{}
	}
	port, _ := strconv.Atoi(portStr)
	return Address{IP: host, Port: port}
}

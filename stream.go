package simrt

import "io"

// memStream is the in-memory Stream implementation (C7, stream half): a
// pair of memStreams share a byteQueue in each direction, so a write on
// one side becomes readable on the other. Bound to the Handle that
// created it (via Accept or Connect) — a memStream must only be used by
// the task that obtained it, the same convention a real net.Conn
// follows in practice even though nothing stops a *different* goroutine
// from holding the fd.
type memStream struct {
	h           *Handle
	local, peer Address
	in, out     *byteQueue
	localClosed bool
}

var _ Stream = (*memStream)(nil)

// Read implements io.Reader. Blocks until bytes are available or the
// peer shuts down (io.EOF once the buffer drains).
func (s *memStream) Read(p []byte) (int, error) {
	if s.localClosed {
		return 0, &OpError{Op: "read", Addr: s.peer, Err: ErrBrokenPipe}
	}
	for {
		if len(s.in.buf) > 0 {
			n := copy(p, s.in.buf)
			s.in.buf = s.in.buf[n:]
			return n, nil
		}
		if s.in.closed {
			return 0, io.EOF
		}
		s.h.suspend(func() { s.in.waiting = s.h.task })
	}
}

// Write implements io.Writer. Never blocks: the byte queue is unbounded,
// matching spec §4.7's "no backpressure" simplification.
func (s *memStream) Write(p []byte) (int, error) {
	if s.localClosed || s.out.closed || s.in.closed {
		return 0, &OpError{Op: "write", Addr: s.peer, Err: ErrBrokenPipe}
	}
	s.out.buf = append(s.out.buf, p...)
	if w := s.out.waiting; w != nil {
		s.out.waiting = nil
		s.h.exec.enqueueNext(w)
	}
	return len(p), nil
}

// LocalAddr implements Stream.
func (s *memStream) LocalAddr() Address { return s.local }

// PeerAddr implements Stream.
func (s *memStream) PeerAddr() Address { return s.peer }

// Shutdown implements Stream: marks this side as done writing. The
// peer's next Read observes io.EOF once its buffered bytes drain, and
// the peer's Writes fail with ErrBrokenPipe; further Read/Write calls on
// this side fail with ErrBrokenPipe.
func (s *memStream) Shutdown() error {
	if s.localClosed {
		return nil
	}
	s.localClosed = true
	s.out.closed = true
	if w := s.out.waiting; w != nil {
		s.out.waiting = nil
		s.h.exec.enqueueNext(w)
	}
	return nil
}

package simrt

// memListener is the in-memory Listener implementation (C7, listener
// half). Its Accept state machine is Idle/Awaiting per spec §4.7:
// Awaiting while no connection is queued and the task is parked;
// otherwise it services the backlog immediately. An accept-path delay
// fault, when drawn, additionally parks the task on a timer before the
// connection is handed back.
type memListener struct {
	h      *Handle
	addr   Address
	ttl    uint32
	q      *connQueue
	net    *network
	closed bool
}

var _ Listener = (*memListener)(nil)

// Accept implements Listener.
func (l *memListener) Accept() (Stream, Address, error) {
	for {
		if len(l.q.items) > 0 {
			pc := l.q.items[0]
			l.q.items = l.q.items[1:]
			pc.stream.h = l.h
			if deadline, hit := l.h.fault.maybeAcceptDelay(); hit {
				l.h.Delay(deadline)
			}
			return pc.stream, pc.peer, nil
		}
		if l.q.closed {
			return nil, Address{}, &OpError{Op: "accept", Addr: l.addr, Err: ErrBrokenPipe}
		}
		l.h.suspend(func() { l.q.waiting = l.h.task })
	}
}

// LocalAddr implements Listener.
func (l *memListener) LocalAddr() Address { return l.addr }

// TTL implements Listener.
func (l *memListener) TTL() uint32 { return l.ttl }

// SetTTL implements Listener.
func (l *memListener) SetTTL(ttl uint32) { l.ttl = ttl }

// Close implements Listener: deregisters addr and wakes a parked Accept
// with ErrBrokenPipe, matching a real listener's close-while-accepting
// behavior.
func (l *memListener) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.net.unbind(l.addr)
	l.q.closed = true
	if w := l.q.waiting; w != nil {
		l.q.waiting = nil
		l.h.exec.enqueueNext(w)
	}
	return nil
}

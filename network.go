package simrt

// byteQueue is a directional byte buffer shared between the two
// endpoints of a memStream: one endpoint writes to it, the other reads
// from it. At most one task is ever parked on it at a time, matching
// the single-reader-per-stream convention documented on memStream.
type byteQueue struct {
	buf     []byte
	closed  bool
	waiting *task
}

// pendingConn is a connection queued at a listener, waiting on Accept.
type pendingConn struct {
	stream *memStream
	peer   Address
}

// connQueue is a listener's inbound connection backlog, structurally
// identical in shape to byteQueue but holding pendingConns instead of
// bytes (spec §4.6/§4.7: the listener state machine's "Awaiting" state).
type connQueue struct {
	items   []*pendingConn
	closed  bool
	waiting *task
}

// network is the in-memory TCP-like fabric (C6): a registry mapping
// bound addresses to listeners, plus ephemeral address allocation for
// outbound connections. Grounded on original_source's
// src/runtime/deterministic/net/listen.rs's
// Network type, reduced to the single-process, single-executor case.
type network struct {
	listeners     map[Address]*memListener
	nextEphemeral int
}

func newNetwork() *network {
	return &network{listeners: make(map[Address]*memListener)}
}

// bind registers addr, returning ErrAddressInUse if already bound.
func (n *network) bind(h *Handle, addr Address) (Listener, error) {
	if existing, ok := n.listeners[addr]; ok && !existing.closed {
		return nil, &OpError{Op: "bind", Addr: addr, Err: ErrAddressInUse}
	}
	l := &memListener{h: h, addr: addr, ttl: 64, q: &connQueue{}, net: n}
	n.listeners[addr] = l
	h.logger().Debug("bind", F("addr", addr.String()))
	return l, nil
}

func (n *network) unbind(addr Address) {
	delete(n.listeners, addr)
}

// allocateEphemeral hands out a locally-unique client-side address.
// Deterministic: a plain counter, not drawn from the rng, since address
// allocation order is already fully determined by task scheduling order.
func (n *network) allocateEphemeral() Address {
	n.nextEphemeral++
	return Address{IP: "127.0.0.1", Port: 49152 + n.nextEphemeral}
}

// connect implements Environment.Connect: looks up the listener bound at
// addr, wires up a full-duplex byte pipe, queues the server-side end for
// Accept, and returns the client-side end. The connect-time disconnect
// fault, if drawn, delivers both ends already shut down.
func (n *network) connect(h *Handle, addr Address) (Stream, error) {
	l, ok := n.listeners[addr]
	if !ok || l.closed {
		return nil, &OpError{Op: "connect", Addr: addr, Err: ErrConnectionRefused}
	}

	local := n.allocateEphemeral()
	clientIn := &byteQueue{}
	serverIn := &byteQueue{}
	client := &memStream{h: h, local: local, peer: addr, in: clientIn, out: serverIn}
	// server's h is rebound by Accept to the accepting task's handle: at
	// connect time we don't yet know which task will accept this
	// connection, and a memStream's blocking calls must suspend the task
	// actually calling them, not the one that happened to create it.
	server := &memStream{h: h, local: addr, peer: local, in: serverIn, out: clientIn}

	if h.fault.maybeConnectDisconnect() {
		client.localClosed = true
		server.localClosed = true
		clientIn.closed = true
		serverIn.closed = true
	}

	l.q.items = append(l.q.items, &pendingConn{stream: server, peer: local})
	if w := l.q.waiting; w != nil {
		l.q.waiting = nil
		h.exec.enqueueNext(w)
	}

	h.logger().Debug("connect", F("addr", addr.String()), F("local", local.String()))
	return client, nil
}

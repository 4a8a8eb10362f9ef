package simrt

import "time"

// FaultConfig holds the recognized fault-injection options (spec §3).
// Immutable after construction; held by the faultInjector.
type FaultConfig struct {
	// AcceptDelayProbability is the chance [0,1] that a newly accepted
	// connection is delayed before being handed to the application.
	AcceptDelayProbability float64
	// AcceptDelayMin and AcceptDelayMax bound the uniform delay drawn
	// when an accept delay fires. Default 100ms..10s, grounded on
	// original_source's listen.rs hard-coded call:
	// maybe_random_delay(0.10, 100ms, 10000ms).
	AcceptDelayMin time.Duration
	AcceptDelayMax time.Duration

	// ConnectDisconnectProbability is the chance [0,1] that a freshly
	// established connection (the ServerSocket handed to the listener
	// and the ClientStream handed to the caller of Connect) is torn down
	// immediately instead of delivered live. This is an additional
	// observation point beyond original_source's accept-only delay; see
	// SPEC_FULL.md §4 for why it was added. Zero by default, so a
	// runtime built with DefaultFaultConfig never exercises it —
	// reproducing original_source's frozen call site exactly unless a
	// caller opts in.
	ConnectDisconnectProbability float64
}

// DefaultFaultConfig returns the fault configuration matching
// original_source's one frozen observation point: a 10% chance of a
// 100ms-10s accept delay, and no connect-time disconnects.
func DefaultFaultConfig() FaultConfig {
	return FaultConfig{
		AcceptDelayProbability: 0.10,
		AcceptDelayMin:         100 * time.Millisecond,
		AcceptDelayMax:         10 * time.Second,
	}
}

// faultInjector is a thin facade over rng + clock (C5): given a
// probability and bounds, it draws one Bernoulli, and on a hit, one
// uniform duration, returning the instant at which the delay expires.
//
// The set of call sites that consult faultInjector is part of the
// public determinism contract (spec §4.5, §9): today that set is
// exactly {listener accept, network connect}. Adding or removing an
// observation point changes the seed-to-behavior mapping for every
// pinned regression seed and must be treated as a breaking change.
type faultInjector struct {
	rng    *rng
	clk    *clock
	cfg    FaultConfig
	logger Logger
}

func newFaultInjector(rng *rng, clk *clock, cfg FaultConfig, logger Logger) *faultInjector {
	return &faultInjector{rng: rng, clk: clk, cfg: cfg, logger: logger}
}

// maybeAcceptDelay draws the accept-path fault: a Bernoulli at
// AcceptDelayProbability, and on a hit, a uniform duration in
// [AcceptDelayMin, AcceptDelayMax). Returns the deadline Instant and
// true if a delay was drawn.
func (f *faultInjector) maybeAcceptDelay() (Instant, bool) {
	if !f.rng.nextBool(f.cfg.AcceptDelayProbability) {
		f.logger.Debug("fault: no accept delay drawn")
		return Instant{}, false
	}
	d := f.rng.nextDuration(f.cfg.AcceptDelayMin, f.cfg.AcceptDelayMax)
	deadline := f.clk.Now().Add(d)
	f.logger.Debug("fault: accept delay drawn", F("duration", d))
	return deadline, true
}

// maybeConnectDisconnect draws the connect-path disconnect fault: a
// single Bernoulli at ConnectDisconnectProbability.
func (f *faultInjector) maybeConnectDisconnect() bool {
	hit := f.rng.nextBool(f.cfg.ConnectDisconnectProbability)
	if hit {
		f.logger.Debug("fault: connect-time disconnect drawn")
	}
	return hit
}

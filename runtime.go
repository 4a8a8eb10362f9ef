package simrt

// DeterministicRuntime bundles the eight components (C1-C8) into a
// single seeded, reproducible simulation: the same seed and the same
// application code always produce the same schedule, the same fault
// draws, and the same outcome (invariant I4).
//
// Construct one with New or NewWithSeed, obtain its root Handle, and
// drive it with BlockOn:
//
//	rt, err := simrt.NewWithSeed(1)
//	if err != nil {
//	        log.Fatal(err)
//	}
//	err = rt.BlockOn(func(env simrt.Environment) {
//	        // application code
//	})
type DeterministicRuntime struct {
	seed  uint64
	rng   *rng
	clk   *clock
	wheel *timerWheel
	net   *network
	fault *faultInjector
	exec  *executor
	opts  *runtimeOptions
}

// New constructs a DeterministicRuntime with a randomly-selected seed
// (drawn from the standard library's source, not this package's
// deterministic rng, since no simulation is running yet to seed it
// from). Prefer NewWithSeed in tests, where reproducibility matters.
func New(opts ...RuntimeOption) (*DeterministicRuntime, error) {
	resolved, err := resolveRuntimeOptions(opts)
	if err != nil {
		return nil, WrapError(err.Error(), ErrRuntimeBuild)
	}
	if !resolved.seedSet {
		resolved.seed = randomSeed()
	}
	return newRuntime(resolved), nil
}

// NewWithSeed constructs a DeterministicRuntime pinned to seed,
// overriding any WithSeed option also supplied.
func NewWithSeed(seed uint64, opts ...RuntimeOption) (*DeterministicRuntime, error) {
	resolved, err := resolveRuntimeOptions(opts)
	if err != nil {
		return nil, WrapError(err.Error(), ErrRuntimeBuild)
	}
	resolved.seed = seed
	resolved.seedSet = true
	return newRuntime(resolved), nil
}

func newRuntime(opts *runtimeOptions) *DeterministicRuntime {
	clk := newClock()
	wheel := newTimerWheel()
	rngInst := newRNG(opts.seed)
	return &DeterministicRuntime{
		seed:  opts.seed,
		rng:   rngInst,
		clk:   clk,
		wheel: wheel,
		net:   newNetwork(),
		fault: newFaultInjector(rngInst, clk, opts.faultConfig, opts.logger),
		exec:  newExecutor(clk, wheel, opts.logger),
		opts:  opts,
	}
}

// Seed returns the seed this runtime was constructed with.
func (rt *DeterministicRuntime) Seed() uint64 {
	return rt.seed
}

// Handle returns an Environment bound to no task in particular; it is
// only valid to use before BlockOn starts the root task, and is not
// what application code should use from inside a running task (use the
// Environment value BlockOn's fn receives instead).
func (rt *DeterministicRuntime) Handle() Environment {
	return &Handle{exec: rt.exec, net: rt.net, fault: rt.fault, clk: rt.clk}
}

// BlockOn runs fn as the root task and drives the executor (timer
// wheel plus ready queue) to completion, returning ErrExecutorDeadlock
// if the simulation stalls with no ready tasks and no pending timers.
func (rt *DeterministicRuntime) BlockOn(fn func(Environment)) error {
	root := &Handle{exec: rt.exec, net: rt.net, fault: rt.fault, clk: rt.clk}
	t := rt.exec.newTask(root, fn)
	return rt.exec.run(t)
}

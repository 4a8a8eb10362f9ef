// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package simrt

// runtimeOptions holds configuration for DeterministicRuntime construction.
type runtimeOptions struct {
	seed        uint64
	seedSet     bool
	faultConfig FaultConfig
	logger      Logger
}

// --- Runtime Options ---

// RuntimeOption configures a DeterministicRuntime instance.
type RuntimeOption interface {
	applyRuntime(*runtimeOptions) error
}

// runtimeOptionImpl implements RuntimeOption.
type runtimeOptionImpl struct {
	applyRuntimeFunc func(*runtimeOptions) error
}

func (r *runtimeOptionImpl) applyRuntime(opts *runtimeOptions) error {
	return r.applyRuntimeFunc(opts)
}

// WithSeed fixes the runtime's seed. Equivalent to passing the seed
// directly to NewWithSeed; provided so seed selection composes with
// other options passed to New.
func WithSeed(seed uint64) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		opts.seed = seed
		opts.seedSet = true
		return nil
	}}
}

// WithFaultConfig sets the probability/bounds configuration consulted by
// the fault injector (C5). See FaultConfig for the recognized fields.
func WithFaultConfig(cfg FaultConfig) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		opts.faultConfig = cfg
		return nil
	}}
}

// WithLogger sets the structured logger used for runtime diagnostics
// (task lifecycle, fault decisions, time advancement, network events).
// A nil Logger, or omitting this option, disables logging.
func WithLogger(logger Logger) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		if logger == nil {
			logger = noopLogger{}
		}
		opts.logger = logger
		return nil
	}}
}

// resolveRuntimeOptions applies RuntimeOption instances to runtimeOptions.
func resolveRuntimeOptions(opts []RuntimeOption) (*runtimeOptions, error) {
	cfg := &runtimeOptions{
		faultConfig: DefaultFaultConfig(),
		logger:      noopLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue // skip nil options gracefully
		}
		if err := opt.applyRuntime(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

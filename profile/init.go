package profile

// Config functions return all supported pprof configuration parameters, as
// assembled by cli/pprof.go from the --pprof-mode/--pprof-dir flags.
type Config func() (mode, path string, quiet bool)

// Start initializes the profiler ctrlfn runs its interpreter loop under and
// returns an interface for stopping it.
//
// Mode selects which of the modes in [Modes] to capture — "cpu" and
// "allocs" are the two most useful against the tree-walking evaluator,
// since EvalExpr/CallFunc dispatch is the hot path and every Value is
// allocated fresh per evaluation. Path specifies the output directory,
// defaulting to a ctrlfn-specific subdirectory of the user's cache dir (see
// cli/pprof.go).
//
// If built without the pprof tag, or Mode is unset, Start returns a no-op
// implementation so callers never need a build-tag-gated call site.
// Both Start and Stop are always safely callable.
func (c Config) Start() interface{ Stop() } {
	mode, path, quiet := c()

	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		_, path, quiet := c()

		return func() (string, string, bool) {
			return mode, path, quiet
		}
	}
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		mode, _, quiet := c()

		return func() (string, string, bool) {
			return mode, path, quiet
		}
	}
}

// WithQuiet returns a functional option for setting a profiler's quiet flag.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		mode, path, _ := c()

		return func() (string, string, bool) {
			return mode, path, quiet
		}
	}
}

// ignore is the profiler ctrlfn runs under when pprof is disabled: a stand-in
// that makes Start/Stop unconditionally safe to call from cli/pprof.go
// regardless of build tags or an empty --pprof-mode.
type ignore struct{}

func (ignore) Stop() {}

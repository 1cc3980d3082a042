//go:build pprof

package profile

// Option applies a configuration option to control, the pprof-tagged
// counterpart of [Config] that accumulates the concrete
// github.com/pkg/profile.Profile functions Start will run.
type Option func(control) control

// apply folds a sequence of options over c in declaration order: withMode
// first so the selected profiler is registered before withPath/withQuiet
// append their own profile.Profile options alongside it.
func apply(c control, opts ...Option) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// newControl builds a control from scratch and applies opts, used by start
// to translate a (mode, path, quiet) triple into the profile.Start call.
func newControl(opts ...Option) control {
	var c control

	return apply(c, opts...)
}

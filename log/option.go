package log

// Option applies one configuration change to config. cli/log.go builds a
// slice of these from parsed --log-* flags (WithLevel, WithFormat,
// WithOutput, ...) and hands it to [Config] once parsing finishes.
type Option func(config) config

// apply folds a sequence of options over cfg in order, so a later option
// (e.g. a --log-output file overriding the --config YAML default) wins.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

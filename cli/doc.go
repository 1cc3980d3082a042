// Package cli contains the command line interface for ctrlfn, an interpreter
// for a small expression-oriented language whose control flow (if, for,
// while) is implemented as ordinary function calls.
//
// # Usage
//
//	ctrlfn run program.ctrl
//	ctrlfn program.ctrl            # "run" is the default command
//	ctrlfn --log-level=debug program.ctrl
//
// # Configuration Loader
//
// The package includes a Kong configuration loader ([yamlConfig]) that reads
// an optional YAML file and flattens it into Kong flag defaults, e.g. a
// "log: {level: debug}" document resolves "--log-level".
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-callsite: Include callsite information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o ctrlfn .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/ctrlfn/pprof)
package cli

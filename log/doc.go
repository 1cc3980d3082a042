// Package log provides the concurrency-safe [log/slog]-backed logger used
// throughout ctrlfn, plus a package-level default instance ([Config],
// [Trace], [Debug], [Info], [Warn], [Error]) the CLI configures from
// --log-* flags before the interpreter's dispatch loop starts emitting to
// it.
//
// The evaluator in package lang treats this package as its tracing facility:
// EvalExpr and CallFunc log one [LevelTrace] record per dispatch, Program.Run
// logs [LevelDebug] at each bootstrap step (global-scope reset, builtin
// registration, function hoisting, main entry), and main logs a failed Run
// as an [LevelError] record before exiting with the code cli/cmd attached.
// Trace is by far the highest-volume level here: running a recursive
// function over a large range produces one Trace record per nested call, so
// it is expected to be compiled in but left below the configured level (the
// default is [LevelInfo]) for normal runs.
//
// # Basic Usage
//
//	logger := log.Make(os.Stdout)
//	logger.Info("application started", slog.String("version", "1.0.0"))
//	logger.Error("failed to connect", slog.Any("error", err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stdout,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCallsite(true))
//
// # Adding Attributes
//
// Attributes can be added to the logger to be included in all subsequent
// log messages using the [Logger.With] method:
//
//	logger = logger.With(slog.String("component", "eval"))
//	logger.Info("request received") // includes component=eval
//
// # Context-Aware Logging
//
// The package provides context-aware logging functions and methods.
// Each logging level has both a context-aware and context-unaware variant:
//
//	ctx := context.WithValue(context.Background(), "request-id", "12345")
//	logger.InfoContext(ctx, "processing request")
//	logger.Info("message without context") // uses DefaultContextProvider
//
// Context-unaware functions internally call their context-aware counterparts
// using [DefaultContextProvider], which returns [context.TODO] by default.
// lang's evaluator always has a real context (threaded in from cli.Run via
// [EvalContext.Context]) and uses the *Context variants, except that builtin
// registration logs through the context-unaware [Debug].
//
// # Supported Levels
//
// The package supports five log levels, from lowest to highest severity:
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn], and [LevelError].
// Messages below the configured level are discarded. LevelTrace sits below
// slog's own Debug level and is rendered as "TRACE" rather than "DEBUG-4".
//
// # Time Formatting
//
// Time formatting is configurable using [WithTimeLayout]. You can
// specify any named layout supported by the [time] package (such as
// "RFC3339" or "RFC3339Nano") or provide a custom layout string.
//
// # Output Formats
//
// Two output formats are supported: [FormatJSON] (default) and
// [FormatText]. Format is set at logger creation time using functional
// options, and can combine with [WithPretty] for colorized, human-readable
// output during interactive `ctrlfn run` sessions.
package log

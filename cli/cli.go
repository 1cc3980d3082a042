package cli

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/ctrlfn/cli/cmd"
	"github.com/ardnew/ctrlfn/lang"
	"github.com/ardnew/ctrlfn/pkg"
)

// DefaultRecursionDepth bounds nested function activations when neither a
// flag nor the YAML config overrides it, converting runaway user recursion
// into ErrRecursionLimit instead of a host stack overflow.
const DefaultRecursionDepth = 512

// CLI is the top-level command-line interface for ctrlfn.
type CLI struct {
	RecursionDepth int `default:"${recursionDepth}" help:"Maximum nested function-activation depth; 0 disables the guard."`

	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Run cmd.Run `cmd:"" default:"withargs" help:"Run a source file"`
}

// configFilePath returns the path to the optional YAML configuration file.
func configFilePath() string {
	return filepath.Join(pkg.ConfigDir(), "config.yaml")
}

// Run executes the ctrlfn CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	cfgPath := configFilePath()

	vars := kong.Vars{
		cmd.ConfigIdentifier: cfgPath,
		"recursionDepth":     strconv.Itoa(DefaultRecursionDepth),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(yamlConfig, cfgPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = lang.WithRecursionDepth(ctx, cli.RecursionDepth)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Callsite which don't use TextUnmarshaler.
	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}

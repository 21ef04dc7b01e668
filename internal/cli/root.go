package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/liqgen/internal/config"
	"github.com/roach88/liqgen/internal/devices"
	"github.com/roach88/liqgen/internal/logging"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger they resolve to.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	LibraryPath string // --db on library commands, overrides library.path

	now      func() time.Time
	cfg      *config.Config
	registry *devices.Registry
	logger   *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the liqgen CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liqgen",
		Short: "liqgen - liquid-handling process code generator",
		Long: `Generate C and Lua controller code from liquid-handling processes.

A process is an ordered list of valve, pump, delay, motor, loop and
composite steps, kept as a JSON or YAML document (or authored in CUE).
liqgen validates it and renders the equivalent controller code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			_, err := opts.config()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (forces debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $"+config.EnvConfig+" or ./"+config.DefaultFileName+")")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewLibraryCommand(opts))
	cmd.AddCommand(NewDevicesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// config loads the configuration once.
func (o *RootOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	o.cfg = cfg
	return cfg, nil
}

// deviceTable builds the effective device table once.
func (o *RootOptions) deviceTable() (*devices.Registry, error) {
	if o.registry != nil {
		return o.registry, nil
	}
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load device table", err)
	}
	o.registry = reg
	return reg, nil
}

// log returns the command logger, building it from the configuration on
// first use. A logger that cannot be built falls back to a no-op logger.
func (o *RootOptions) log() *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	o.logger = zap.NewNop()
	if cfg, err := o.config(); err == nil {
		if l, err := logging.New(cfg.Logging, o.Verbose); err == nil {
			o.logger = l
		}
	}
	return o.logger
}

// clock returns the wall clock used for generated timestamps.
func (o *RootOptions) clock() func() time.Time {
	if o.now != nil {
		return o.now
	}
	return time.Now
}

// newFormatter builds the output formatter for a command.
func (o *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

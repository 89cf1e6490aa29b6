package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/homotopy/internal/config"
	"github.com/roach88/homotopy/internal/core"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config is loaded before any subcommand runs.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the homotopy CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "homotopy",
		Short: "Higher-dimensional diagram rewriting",
		Long: `homotopy checks signatures of higher-dimensional cells and runs scripted
proof sessions against them: attaching cells, contracting and expanding
diagrams, and declaring new generators from their boundaries.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .homotopy.yaml)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewExamplesCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewProofsCommand(opts))

	return cmd
}

// load reads the configuration and installs the default logger. --verbose
// overrides the configured level.
func (o *RootOptions) load(cmd *cobra.Command) error {
	v, err := config.New(o.ConfigFile)
	if err != nil {
		return o.formatter(cmd).Fail(ExitCommandError, "failed to read config", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return o.formatter(cmd).Fail(ExitCommandError, "invalid config", err)
	}
	o.Config = cfg

	level, _ := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// runContext returns the command context bounded by the configured timeout and
// carrying the configured executor.
func (o *RootOptions) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = core.WithExecutor(ctx, o.Config.Executor())
	if o.Config.Timeout > 0 {
		return context.WithTimeout(ctx, o.Config.Timeout)
	}
	return context.WithCancel(ctx)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

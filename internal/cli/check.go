package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/homotopy/internal/compiler"
	"github.com/roach88/homotopy/internal/proof"
	"github.com/roach88/homotopy/internal/typecheck"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Deep bool
}

// GeneratorSummary describes one generator of a checked signature.
type GeneratorSummary struct {
	Name       string `json:"name"`
	ID         int    `json:"id"`
	Dimension  int    `json:"dimension"`
	Invertible bool   `json:"invertible,omitempty"`
}

// CheckResult holds the outcome of checking a signature.
type CheckResult struct {
	Valid      bool                       `json:"valid"`
	Mode       string                     `json:"mode"`
	Generators []GeneratorSummary         `json:"generators"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <signature>",
		Short: "Compile a signature and typecheck every cell",
		Long: `Compile a CUE signature file (or a directory holding one CUE package)
and typecheck the cell of every generator.

Exit codes:
  0 - Signature compiles and every cell typechecks
  1 - Compile or typecheck errors
  2 - Command error (missing file, bad config)

Examples:
  homotopy check monoid.cue
  homotopy check --deep ./signatures/monoid
  homotopy check monoid.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Deep, "deep", false, "typecheck every slice (overrides typecheck_mode)")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	mode, _ := opts.Config.Mode()
	if opts.Deep {
		mode = typecheck.Deep
	}

	ctx, cancel := opts.runContext(cmd)
	defer cancel()

	result, err := checkSignature(ctx, path, mode, formatter)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return formatter.Fail(ExitCommandError, "cannot load signature", err)
		}
		return formatter.Fail(ExitFailure, "signature does not compile", err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		writeCheckText(formatter.Writer, path, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d generator(s) failed to typecheck", len(result.Errors)))
	}
	return nil
}

// checkSignature compiles and validates the signature at path.
func checkSignature(ctx context.Context, path string, mode typecheck.Mode, formatter *OutputFormatter) (*CheckResult, error) {
	sig, err := LoadSignature(path)
	if err != nil {
		return nil, err
	}
	formatter.VerboseLog("Compiled %d generator(s) from %s", sig.Len(), path)

	errs, err := compiler.Validate(ctx, sig, mode)
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		Valid:      len(errs) == 0,
		Mode:       mode.String(),
		Generators: summarize(sig),
		Errors:     errs,
	}, nil
}

func summarize(sig *proof.Signature) []GeneratorSummary {
	infos := sig.Generators()
	out := make([]GeneratorSummary, len(infos))
	for i, info := range infos {
		out[i] = GeneratorSummary{
			Name:       info.Name,
			ID:         info.Generator.ID,
			Dimension:  info.Generator.Dimension,
			Invertible: info.Invertible,
		}
	}
	return out
}

func writeCheckText(w io.Writer, path string, result *CheckResult) {
	for _, g := range result.Generators {
		inv := ""
		if g.Invertible {
			inv = " (invertible)"
		}
		fmt.Fprintf(w, "  %-12s dim %d%s\n", g.Name, g.Dimension, inv)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n", e.Error())
	}
	if result.Valid {
		fmt.Fprintf(w, "✓ %s: %d generator(s) typecheck (%s)\n", path, len(result.Generators), result.Mode)
	}
}

package cli

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// exampleFS holds a monoid signature, scenarios over it and their golden
// traces.
//
//go:embed examples
var exampleFS embed.FS

// ExamplesOptions holds flags for the examples command.
type ExamplesOptions struct {
	*RootOptions
	Force bool
}

// NewExamplesCommand creates the examples command.
func NewExamplesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExamplesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "examples [dir]",
		Short: "List or write the bundled example signature and scenarios",
		Long: `Without an argument, list the bundled example files. With a directory,
write them there so they can be checked and run:

  homotopy examples ./ex
  homotopy check ./ex/monoid.cue
  homotopy run ./ex/scenarios`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listExamples(opts, cmd)
			}
			return writeExamples(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing files")

	return cmd
}

// exampleFiles returns the bundled files relative to the examples root.
func exampleFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(exampleFS, "examples", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel("examples", p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

func listExamples(opts *ExamplesOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	files, err := exampleFiles()
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot read bundled examples", err)
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]any{"files": files})
	}
	for _, f := range files {
		fmt.Fprintln(formatter.Writer, f)
	}
	return nil
}

func writeExamples(opts *ExamplesOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	files, err := exampleFiles()
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot read bundled examples", err)
	}

	var written []string
	for _, f := range files {
		dest := filepath.Join(dir, filepath.FromSlash(f))
		if _, err := os.Stat(dest); err == nil && !opts.Force {
			return formatter.Fail(ExitCommandError, "refusing to overwrite", fmt.Errorf("%s exists (use --force)", dest))
		}
		data, err := exampleFS.ReadFile("examples/" + f)
		if err != nil {
			return formatter.Fail(ExitFailure, "cannot read bundled examples", err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return formatter.Fail(ExitCommandError, "cannot create directory", err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return formatter.Fail(ExitCommandError, "cannot write example", err)
		}
		formatter.VerboseLog("Wrote %s", dest)
		written = append(written, dest)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"written": written})
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote %d file(s) to %s\n", len(written), dir)
	return nil
}

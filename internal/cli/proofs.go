package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/harness"
	"github.com/roach88/homotopy/internal/store"
)

// ProofsOptions holds flags shared by the proofs subcommands.
type ProofsOptions struct {
	*RootOptions
	Database string // overrides the configured database
	Name     string // name for saved proofs (save only)
}

// ProofDetail describes one loaded proof.
type ProofDetail struct {
	ID         string `json:"id"`
	Generators int    `json:"generators"`
	Seq        int64  `json:"seq"`
	Dimension  int    `json:"dimension"`
	Workspace  string `json:"workspace,omitempty"`
}

// NewProofsCommand creates the proofs command and its subcommands.
func NewProofsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProofsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "proofs",
		Short: "Save, list, inspect and delete stored proofs",
		Long: `Manage proofs stored in the SQLite database (the database config key, or
--db). Diagram nodes are content-addressed and shared between proofs.

Examples:
  homotopy proofs save ./scenarios/side_by_side.yaml --name assoc-demo
  homotopy proofs list
  homotopy proofs show 0192f3b4-...
  homotopy proofs delete 0192f3b4-...`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	save := &cobra.Command{
		Use:           "save <scenario.yaml>",
		Short:         "Run a scenario and store its final proof",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProofsSave(opts, args[0], cmd)
		},
	}
	save.Flags().StringVar(&opts.Name, "name", "", "name to store the proof under (default: scenario name)")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List stored proofs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProofsList(opts, cmd)
		},
	}

	show := &cobra.Command{
		Use:           "show <id>",
		Short:         "Load a stored proof and describe it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProofsShow(opts, args[0], cmd)
		},
	}

	del := &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a stored proof and prune unreferenced nodes",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProofsDelete(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(save, list, show, del)
	return cmd
}

func (o *ProofsOptions) open() (*store.Store, error) {
	path := o.Database
	if path == "" {
		path = o.Config.Database
	}
	return store.Open(path)
}

func runProofsSave(opts *ProofsOptions, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot load scenario", err)
	}
	ctx, cancel := opts.runContext(cmd)
	defer cancel()

	result, err := harness.Run(ctx, scenario)
	if err != nil {
		return formatter.Fail(ExitFailure, "scenario failed to run", err)
	}
	if !result.Pass {
		_ = formatter.Error(ErrCodeGeneric, "scenario failed", result.Errors)
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed; not saved", scenario.Name))
	}

	st, err := opts.open()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	name := opts.Name
	if name == "" {
		name = scenario.Name
	}
	id, err := st.SaveProof(ctx, name, result.Proof)
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot save proof", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "name": name})
	}
	fmt.Fprintf(formatter.Writer, "✓ Saved %s as %s\n", name, id)
	return nil
}

func runProofsList(opts *ProofsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.open()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	ctx, cancel := opts.runContext(cmd)
	defer cancel()
	proofs, err := st.ListProofs(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot list proofs", err)
	}

	if opts.Format == "json" {
		if proofs == nil {
			proofs = []store.ProofSummary{}
		}
		return formatter.Success(proofs)
	}
	if len(proofs) == 0 {
		fmt.Fprintln(formatter.Writer, "No proofs stored.")
		return nil
	}
	for _, p := range proofs {
		fmt.Fprintf(formatter.Writer, "%s  %-20s seq %-4d generators %d\n", p.ID, p.Name, p.Seq, p.Generators)
	}
	return nil
}

func runProofsShow(opts *ProofsOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.open()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	ctx, cancel := opts.runContext(cmd)
	defer cancel()
	p, err := st.LoadProof(ctx, id, core.NewInterner())
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot load proof", err)
	}

	detail := ProofDetail{
		ID:         id,
		Generators: p.Signature().Len(),
		Seq:        p.Clock().Current(),
		Dimension:  -1,
	}
	if w := p.Workspace(); w != nil {
		detail.Dimension = w.Dimension()
		if d, err := w.Visible(); err == nil {
			detail.Workspace = d.String()
		}
	}

	if opts.Format == "json" {
		return formatter.Success(detail)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "Proof %s\n", detail.ID)
	fmt.Fprintf(w, "  generators: %d\n", detail.Generators)
	fmt.Fprintf(w, "  seq:        %d\n", detail.Seq)
	if detail.Dimension < 0 {
		fmt.Fprintln(w, "  workspace:  empty")
	} else {
		fmt.Fprintf(w, "  workspace:  dim %d %s\n", detail.Dimension, detail.Workspace)
	}
	for _, info := range p.Signature().Generators() {
		formatter.VerboseLog("  %s: %s", info.Name, info.Generator)
	}
	return nil
}

func runProofsDelete(opts *ProofsOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.open()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	ctx, cancel := opts.runContext(cmd)
	defer cancel()
	if err := st.DeleteProof(ctx, id); err != nil {
		return formatter.Fail(ExitFailure, "cannot delete proof", err)
	}
	pruned, err := st.PruneNodes(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot prune nodes", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"id": id, "pruned": pruned})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted %s (%d node(s) pruned)\n", id, pruned)
	return nil
}

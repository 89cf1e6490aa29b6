package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/homotopy/internal/typecheck"
)

// watchDebounce is how long a file must stay quiet before it is re-checked.
const watchDebounce = 100 * time.Millisecond

// Watcher reports edits to .cue files in a directory. Editors often replace
// a file instead of writing it, so the directory is watched rather than the
// file.
type Watcher struct {
	Dir     string
	Changes <-chan string // Paths of changed .cue files

	changes chan string
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for dir. Call Start to begin watching.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan string, 16)
	return &Watcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.changes <- file
				}
				return
			}
			if filepath.Ext(event.Name) != ".cue" {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case now := <-ticker.C:
			for file, t := range pending {
				if now.Sub(t) >= watchDebounce {
					w.changes <- file
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal; the next event re-checks.
		}
	}
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <signature>",
		Short: "Re-check a signature whenever it changes",
		Long: `Check a CUE signature, then check it again every time a .cue file next to
it is written. Runs until interrupted.

Example:
  homotopy watch monoid.cue --deep`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Deep, "deep", false, "typecheck every slice (overrides typecheck_mode)")

	return cmd
}

func runWatch(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	info, err := os.Stat(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot watch signature", err)
	}

	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	w, err := NewWatcher(dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot create watcher", err)
	}
	if err := w.Start(); err != nil {
		return formatter.Fail(ExitCommandError, "cannot watch directory", err)
	}
	defer w.Stop()

	mode, _ := opts.Config.Mode()
	if opts.Deep {
		mode = typecheck.Deep
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	check := func() {
		cctx, cancel := opts.runContext(cmd)
		defer cancel()
		reportCheck(cctx, formatter, path, mode)
	}
	watchLoop(ctx, w.Changes, check)
	return nil
}

// watchLoop runs check once, then again for every change until ctx ends or
// changes is closed.
func watchLoop(ctx context.Context, changes <-chan string, check func()) {
	check()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			check()
		}
	}
}

// reportCheck prints one check outcome without failing the watch.
func reportCheck(ctx context.Context, formatter *OutputFormatter, path string, mode typecheck.Mode) {
	stamp := time.Now().Format(time.TimeOnly)
	result, err := checkSignature(ctx, path, mode, formatter)
	switch {
	case err != nil:
		_ = formatter.Error(ErrorCode(err), fmt.Sprintf("%s %v", stamp, err), nil)
	case formatter.Format == "json":
		_ = formatter.Success(result)
	case result.Valid:
		fmt.Fprintf(formatter.Writer, "%s ✓ %s: %d generator(s) typecheck (%s)\n", stamp, path, len(result.Generators), result.Mode)
	default:
		for _, e := range result.Errors {
			fmt.Fprintf(formatter.Writer, "%s ✗ %s\n", stamp, e.Error())
		}
	}
}

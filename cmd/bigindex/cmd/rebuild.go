package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/model"
)

type rebuildFlags struct {
	drop      bool
	batchSize int
	commit    bool
	optimize  bool
	silent    bool
	offset    int
	view      string
	startKey  string
	stopKey   string
	order     []string
}

// newRebuildCmd creates the rebuild command.
func newRebuildCmd(g *globalFlags) *cobra.Command {
	f := &rebuildFlags{}

	cmd := &cobra.Command{
		Use:   "rebuild [model...]",
		Short: "Reindex models from their primary stores",
		Long: `Rebuild reads every record of each model from its primary store and
writes it to the index in batches. Without arguments every declared model
is rebuilt, one at a time.

A rebuild holds a per-model lock; a second rebuild of the same model fails
while the first is running.`,
		Example: `  bigindex rebuild
  bigindex rebuild Book --drop
  bigindex rebuild Book --batch-size 500 --offset 10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(cmd, g, f, args)
		},
	}

	cmd.Flags().BoolVar(&f.drop, "drop", false, "Drop the model's documents before indexing")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Records per batch (default: rebuild.batch_size)")
	cmd.Flags().BoolVar(&f.commit, "commit", true, "Commit after each batch")
	cmd.Flags().BoolVar(&f.optimize, "optimize", true, "Optimize the index after the last batch")
	cmd.Flags().BoolVar(&f.silent, "silent", false, "Suppress progress output")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Skip this many records, to resume a paged rebuild")
	cmd.Flags().StringVar(&f.view, "view", "", "Index only the fields of this view")
	cmd.Flags().StringVar(&f.startKey, "start-key", "", "First key of a streaming rebuild (inclusive)")
	cmd.Flags().StringVar(&f.stopKey, "stop-key", "", "Last key of a streaming rebuild (exclusive)")
	cmd.Flags().StringSliceVar(&f.order, "order", nil, "Page order for paged sources, e.g. -updated_at")

	return cmd
}

func runRebuild(cmd *cobra.Command, g *globalFlags, f *rebuildFlags, names []string) error {
	ctx := cmd.Context()
	if f.batchSize < 0 || f.offset < 0 {
		return errors.Newf(errors.ErrCodeInvalidFindOption, "--batch-size and --offset must not be negative")
	}

	dir, cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	base := g.logger(cmd, cfg)
	logger := slog.New(newProgressHandler(base.Handler(), cmd.ErrOrStderr()))

	ws, err := openWorkspace(ctx, cfg, names, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	if len(names) == 0 {
		names = cfg.ModelNames()
	}
	batchSize := f.batchSize
	if batchSize == 0 {
		batchSize = cfg.Rebuild.BatchSize
	}

	for _, name := range names {
		lock := newRebuildLock(dir, name)
		acquired, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !acquired {
			return errors.Newf(errors.ErrCodeRebuildLocked, "rebuild of %s is already running", name).
				WithDetail("lock", lock.Path()).
				WithSuggestion("wait for the other rebuild to finish")
		}

		n, err := ws.Model(name).Rebuild(ctx,
			model.RebuildOptions{
				Drop:      f.drop,
				BatchSize: batchSize,
				Commit:    model.Bool(f.commit),
				Optimize:  model.Bool(f.optimize),
				Silent:    f.silent,
			},
			model.FinderOptions{
				BatchSize: batchSize,
				View:      f.view,
				Offset:    f.offset,
				StartKey:  f.startKey,
				StopKey:   f.stopKey,
				Order:     f.order,
			})
		_ = lock.Unlock()
		if err != nil {
			return err
		}
		if !f.silent {
			base.Debug("rebuild_model_done", slog.String("model", name), slog.Int("processed", n))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records indexed\n", name, n)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/indexer"
)

// waitOptions controls polling an indexer until it is idle.
type waitOptions struct {
	wait     bool
	interval time.Duration
	timeout  time.Duration
}

func (w *waitOptions) check() error {
	if w.wait && w.interval <= 0 {
		return faults.Validationf("--interval must be positive")
	}
	return nil
}

func (w *waitOptions) addFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&w.wait, "wait", false, "Poll the status until the current run finishes")
	fs.DurationVar(&w.interval, "interval", 5*time.Second, "Status poll interval")
	fs.DurationVar(&w.timeout, "timeout", 30*time.Minute, "Give up waiting after this long")
}

// waitFunc polls one indexer until some condition holds.
type waitFunc func(ctx context.Context, name string, interval time.Duration) (*indexer.Status, error)

// waitIdle runs poll under the wait timeout and reports the outcome of the
// last run. A run that ended in failure is returned as an error.
func (w *waitOptions) waitIdle(cmd *cobra.Command, name string, poll waitFunc) (*indexer.Status, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), w.timeout)
	defer cancel()

	st, err := poll(ctx, name, w.interval)
	if err != nil {
		return nil, err
	}
	if st.LastResult == nil {
		status(cmd, "indexer %s has never run", name)
		return st, nil
	}
	last := st.LastResult
	status(cmd, "indexer %s: %s (%d processed, %d failed)", name, last.Status, last.ItemsProcessed, last.ItemsFailed)
	if last.Failed() {
		return st, fmt.Errorf("indexer %s run failed: %s", name, last.ErrorMessage)
	}
	return st, nil
}

func (a *app) newIndexerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "indexer",
		GroupID: groupResources,
		Short:   "Run, reset and inspect indexers",
	}
	cmd.AddCommand(a.newIndexerRunCommand())
	cmd.AddCommand(a.newIndexerResetCommand())
	cmd.AddCommand(a.newIndexerStatusCommand())
	return cmd
}

func (a *app) newIndexerRunCommand() *cobra.Command {
	var w waitOptions
	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Start an indexer run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := w.check(); err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			var prev *time.Time
			if w.wait {
				if prev, err = svc.Indexers.LastStart(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			if err := svc.Indexers.Run(cmd.Context(), args[0]); err != nil {
				return err
			}
			status(cmd, "indexer %s started", args[0])
			if !w.wait {
				return nil
			}
			_, err = w.waitIdle(cmd, args[0], func(ctx context.Context, name string, interval time.Duration) (*indexer.Status, error) {
				return svc.Indexers.WaitRun(ctx, name, prev, interval)
			})
			return err
		},
	}
	w.addFlags(cmd.Flags())
	return cmd
}

func (a *app) newIndexerResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <name>",
		Short: "Reset an indexer's change tracking state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			if err := svc.Indexers.Reset(cmd.Context(), args[0]); err != nil {
				return err
			}
			status(cmd, "indexer %s reset", args[0])
			return nil
		},
	}
}

func (a *app) newIndexerStatusCommand() *cobra.Command {
	var w waitOptions
	cmd := &cobra.Command{
		Use:   "status <name>",
		Short: "Print the indexer status payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := w.check(); err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			if w.wait {
				if _, err := w.waitIdle(cmd, args[0], svc.Indexers.WaitIdle); err != nil {
					return err
				}
			}
			st, err := svc.Indexers.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, st)
		},
	}
	w.addFlags(cmd.Flags())
	return cmd
}

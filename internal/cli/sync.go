package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type SyncCmd struct {
	opts  *rootOptions
	every time.Duration
}

func NewSyncCmd(opts *rootOptions) *SyncCmd {
	return &SyncCmd{opts: opts}
}

func (c *SyncCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy the spreadsheet into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.opts.withApp(ctx, func(a *app) error {
				syncer := a.syncer()

				if c.every <= 0 {
					report, err := syncer.SyncOnce(ctx)
					if err != nil {
						return err
					}
					printSyncReport(cmd.OutOrStdout(), report)
					return nil
				}

				a.serveMetrics(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "Syncing every %s, press Ctrl+C to stop.\n", c.every)
				if err := syncer.RunEvery(ctx, c.every); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&c.every, "every", 0, "keep syncing at this interval instead of once")

	return cmd
}

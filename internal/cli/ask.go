package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
)

type AskCmd struct {
	opts    *rootOptions
	details bool
}

func NewAskCmd(opts *rootOptions) *AskCmd {
	return &AskCmd{opts: opts}
}

func (c *AskCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			return c.opts.withApp(cmd.Context(), func(a *app) error {
				runner, err := a.runner(cmd.Context())
				if err != nil {
					return err
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), graph.RunTimeout)
				defer cancel()

				run, err := runner.Invoke(ctx, model.QueryInput{Question: question})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, run.Answer)
				if c.details {
					fmt.Fprintln(out)
					printRunDetails(out, run)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&c.details, "details", false, "print intent, retries and every generated query")

	return cmd
}

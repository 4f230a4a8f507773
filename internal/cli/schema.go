package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type SchemaCmd struct {
	opts *rootOptions
}

func NewSchemaCmd(opts *rootOptions) *SchemaCmd {
	return &SchemaCmd{opts: opts}
}

func (c *SchemaCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema description given to the query generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.opts.withApp(cmd.Context(), func(a *app) error {
				text, err := a.schema.DescribeSchema(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

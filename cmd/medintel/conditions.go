package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConditionsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conditions",
		Short: "List the conditions in the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := root.knowledge()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSEVERITY\tEMERGENCY")
			for _, c := range kb.Conditions() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", c.ID, c.Name, c.Severity, c.Emergency)
			}
			return tw.Flush()
		},
	}
}

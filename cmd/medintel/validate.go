package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a knowledge base file",
		Long: `Validate loads the knowledge base given by --kb (or the embedded one) and
reports every structural defect it finds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := root.knowledge()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "knowledge base %s ok: %d conditions, %d synonym groups\n",
				kb.Version(), len(kb.Conditions()), kb.Synonyms().Len())
			return nil
		},
	}
}

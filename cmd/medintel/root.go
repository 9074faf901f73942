package main

import (
	"github.com/spf13/cobra"

	"github.com/Skufu/MedIntel/internal/knowledge"
)

type rootOptions struct {
	kbPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "medintel",
		Short: "Rule-based symptom analysis from the command line",
		Long: `medintel matches a free-text symptom description against a catalog of
conditions and prints ranked scores with guidance.

The output is educational and is not medical advice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.kbPath, "kb", "", "knowledge base YAML file (default is the embedded catalog)")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newConditionsCmd(opts),
		newValidateCmd(opts),
	)
	return cmd
}

func (o *rootOptions) knowledge() (*knowledge.Base, error) {
	if o.kbPath == "" {
		return knowledge.Default()
	}
	return knowledge.LoadFile(o.kbPath)
}

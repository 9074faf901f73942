package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skufu/MedIntel/internal/analysis"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "analyze [symptoms...]",
		Short: "Analyze a symptom description",
		Long: `Analyze scores a free-text symptom description against the knowledge base.
The text is taken from the arguments, or from stdin when none are given.`,
		Example: `  medintel analyze "chest pain and sweating"
  echo "runny nose, sneezing" | medintel analyze --summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := root.knowledge()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			res := analysis.New(kb).Analyze(text)
			if summary {
				return writeSummary(cmd.OutOrStdout(), res)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print a short text report instead of JSON")
	return cmd
}

func writeSummary(w io.Writer, res analysis.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", res.Insight.Summary)
	if res.InputAnalysis.EmergencyDetected {
		fmt.Fprintf(&b, "Emergency level: %s\n", res.InputAnalysis.EmergencyLevel)
	}
	if len(res.InputAnalysis.ExtractedSymptoms) > 0 {
		fmt.Fprintf(&b, "Symptoms: %s\n", strings.Join(res.InputAnalysis.ExtractedSymptoms, ", "))
	}

	if len(res.RiskAssessment) > 0 {
		b.WriteString("\nConditions:\n")
		for i, c := range res.RiskAssessment {
			fmt.Fprintf(&b, "  %d. %s  %d%% (%s)\n", i+1, c.ConditionName, c.Score, c.Severity)
		}
	}

	b.WriteString("\nNext steps:\n")
	for _, step := range res.Insight.NextSteps {
		fmt.Fprintf(&b, "  - %s\n", step)
	}

	fmt.Fprintf(&b, "\n%s\n", res.Disclaimer)

	_, err := io.WriteString(w, b.String())
	return err
}

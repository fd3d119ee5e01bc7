// Package analyze handles the full enrichment pipeline command
package analyze

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcbailey111/finance-agent/cmd/root"
	"github.com/kcbailey111/finance-agent/internal/anomaly"
	"github.com/kcbailey111/finance-agent/internal/ingest"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/recurring"
	"github.com/kcbailey111/finance-agent/internal/report"
)

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full enrichment pipeline over a batch of transactions",
	Long: `Run categorization, anomaly detection, and recurring charge detection
over a CSV export (or a directory of exports) and write the enriched
transactions back out as CSV.`,
	RunE: analyzeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.SummaryFile, "summary", "s", "", "Write a JSON run summary to this file")
}

func analyzeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer(cmd.Context())
	if err != nil {
		return err
	}

	transactions, err := root.LoadInput(c)
	if err != nil {
		return err
	}

	result := c.GetPipeline().Run(cmd.Context(), transactions)

	if root.SharedFlags.Output != "" {
		if err := ingest.WriteEnrichedCSV(result.Transactions, root.SharedFlags.Output, root.Log); err != nil {
			return fmt.Errorf("failed to write enriched CSV: %w", err)
		}
		root.Log.Info("Enriched transactions written",
			logging.Field{Key: logging.FieldOutputFile, Value: root.SharedFlags.Output},
			logging.Field{Key: logging.FieldCount, Value: len(result.Transactions)})
	}

	if root.SummaryFile != "" {
		generator := report.NewGenerator(root.Log)
		if err := generator.WriteJSON(generator.Summarize(result), root.SummaryFile); err != nil {
			return err
		}
	}

	cfg := c.GetConfig()
	fmt.Print(anomaly.RenderReport(result.Transactions, cfg.Anomaly.TopN))
	fmt.Println()
	fmt.Print(recurring.RenderCalendar(c.GetRecurringDetector().Calendar(result.Transactions)))

	return nil
}

// Package anomalies handles the anomaly detection report command
package anomalies

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcbailey111/finance-agent/cmd/root"
	"github.com/kcbailey111/finance-agent/internal/anomaly"
)

// Cmd represents the anomalies command
var Cmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Detect unusual transactions and print an anomaly report",
	Long: `Run statistical, category, merchant, and magnitude anomaly passes over a
CSV export and print a report of the flagged transactions.`,
	RunE: anomaliesFunc,
}

func init() {
	Cmd.Flags().IntVarP(&root.TopN, "top", "t", 0, "Number of top anomalies to show (default from config)")
}

func anomaliesFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer(cmd.Context())
	if err != nil {
		return err
	}

	transactions, err := root.LoadInput(c)
	if err != nil {
		return err
	}

	c.GetAnomalyDetector().Detect(transactions)

	topN := root.TopN
	if topN < 1 {
		topN = c.GetConfig().Anomaly.TopN
	}
	fmt.Print(anomaly.RenderReport(transactions, topN))
	return nil
}

// Package stats handles the spending analytics dashboard command
package stats

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcbailey111/finance-agent/cmd/root"
	"github.com/kcbailey111/finance-agent/internal/analytics"
)

// Cmd represents the stats command
var Cmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a spending analytics dashboard for a batch of transactions",
	Long: `Aggregate a CSV export into spending totals, per-category and monthly
summaries, and top merchants, and print them as a text dashboard.
Categories already present in the input are used as-is; uncategorized
rows are routed through the rule engine first.`,
	RunE: statsFunc,
}

func statsFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer(cmd.Context())
	if err != nil {
		return err
	}

	transactions, err := root.LoadInput(c)
	if err != nil {
		return err
	}

	for i := range transactions {
		if transactions[i].Category == "" {
			c.GetRouter().Categorize(cmd.Context(), &transactions[i])
		}
	}

	fmt.Print(analytics.New(transactions).RenderDashboard())
	return nil
}

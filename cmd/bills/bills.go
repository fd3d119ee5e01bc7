// Package bills handles the recurring charge calendar command
package bills

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcbailey111/finance-agent/cmd/root"
	"github.com/kcbailey111/finance-agent/internal/recurring"
)

// Cmd represents the bills command
var Cmd = &cobra.Command{
	Use:   "bills",
	Short: "Detect recurring charges and print an upcoming bill calendar",
	Long: `Cluster transactions by normalized merchant, detect monthly recurring
charges, and print a calendar of upcoming bills with their typical
amounts and due days.`,
	RunE: billsFunc,
}

func billsFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer(cmd.Context())
	if err != nil {
		return err
	}

	transactions, err := root.LoadInput(c)
	if err != nil {
		return err
	}

	detector := c.GetRecurringDetector()
	detector.Mark(transactions)
	fmt.Print(recurring.RenderCalendar(detector.Calendar(transactions)))
	return nil
}

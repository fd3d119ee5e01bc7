package analytics

import (
	"fmt"
	"strings"

	"github.com/kcbailey111/finance-agent/internal/textutils"
)

// RenderDashboard formats the fixed-layout spending summary report.
func (a *Analytics) RenderDashboard() string {
	banner := strings.Repeat("=", 60)
	divider := strings.Repeat("-", 60)

	total := a.TotalSpending()
	count := a.TransactionCount()
	totalFloat, _ := total.Float64()

	lines := []string{
		banner,
		"SPENDING ANALYTICS DASHBOARD",
		banner,
		"",
		fmt.Sprintf("Total Spending: $%s", textutils.CommaSeparated(totalFloat)),
		fmt.Sprintf("Total Transactions: %d", count),
	}
	if count > 0 {
		lines = append(lines, fmt.Sprintf("Average Transaction: $%s",
			textutils.CommaSeparated(totalFloat/float64(count))))
	}
	lines = append(lines, "", "TOP SPENDING CATEGORIES:", divider)

	for _, cs := range a.TopCategories(5) {
		spent, _ := cs.TotalSpent.Float64()
		lines = append(lines, fmt.Sprintf("  %-20s $%10s  (%5.1f%%)  [%d transactions]",
			cs.Category, textutils.CommaSeparated(spent), cs.Percentage, cs.TransactionCount))
	}

	if monthly := a.MonthlySummaries(); len(monthly) > 0 {
		lines = append(lines, "", "MONTHLY SPENDING SUMMARY:", divider)
		for _, ms := range monthly {
			spent, _ := ms.TotalSpent.Float64()
			lines = append(lines, fmt.Sprintf("  %-10s $%10s  [%d transactions]",
				ms.Month, textutils.CommaSeparated(spent), ms.TransactionCount))
		}
	}

	if merchants := a.TopMerchants(5); len(merchants) > 0 {
		lines = append(lines, "", "TOP MERCHANTS BY SPENDING:", divider)
		for _, ms := range merchants {
			spent, _ := ms.TotalSpent.Float64()
			lines = append(lines, fmt.Sprintf("  %-30s $%10s",
				ms.Merchant, textutils.CommaSeparated(spent)))
		}
	}

	lines = append(lines, "", banner)
	return strings.Join(lines, "\n")
}

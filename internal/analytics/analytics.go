// Package analytics generates spending summaries and a formatted dashboard
// report from categorized transactions.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kcbailey111/finance-agent/internal/dateutils"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// CategorySummary is spending aggregated over one category.
type CategorySummary struct {
	Category         string
	TotalSpent       decimal.Decimal
	TransactionCount int
	AvgTransaction   decimal.Decimal
	// Percentage of total spending, in [0, 100].
	Percentage float64
}

// MonthlySummary is spending aggregated over one calendar month.
type MonthlySummary struct {
	// Month is a YYYY-MM key.
	Month            string
	TotalSpent       decimal.Decimal
	TransactionCount int
}

// MerchantSummary is spending aggregated over one merchant.
type MerchantSummary struct {
	Merchant   string
	TotalSpent decimal.Decimal
}

// Analytics computes spending insights over a batch. Amounts that failed to
// parse never contribute to totals, but their rows still count toward the
// transaction count so the dashboard reflects the whole input.
type Analytics struct {
	transactions []models.Transaction
}

// New creates an Analytics over the given transactions.
func New(transactions []models.Transaction) *Analytics {
	return &Analytics{transactions: transactions}
}

// TransactionCount reports the number of input rows, valid or not.
func (a *Analytics) TransactionCount() int {
	return len(a.transactions)
}

// TotalSpending sums all valid amounts.
func (a *Analytics) TotalSpending() decimal.Decimal {
	total := decimal.Zero
	for i := range a.transactions {
		if a.transactions[i].AmountValid {
			total = total.Add(a.transactions[i].Amount)
		}
	}
	return total.Round(2)
}

// CategorySummaries returns per-category spending, sorted by total
// descending with category name breaking ties.
func (a *Analytics) CategorySummaries() []CategorySummary {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for i := range a.transactions {
		tx := &a.transactions[i]
		if !tx.AmountValid {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		counts[tx.Category]++
	}

	grandTotal := decimal.Zero
	for _, total := range totals {
		grandTotal = grandTotal.Add(total)
	}

	summaries := make([]CategorySummary, 0, len(totals))
	for category, total := range totals {
		count := counts[category]
		summary := CategorySummary{
			Category:         category,
			TotalSpent:       total.Round(2),
			TransactionCount: count,
			AvgTransaction:   total.Div(decimal.NewFromInt(int64(count))).Round(2),
		}
		if !grandTotal.IsZero() {
			pct, _ := total.Div(grandTotal).Mul(decimal.NewFromInt(100)).Round(1).Float64()
			summary.Percentage = pct
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].TotalSpent.Equal(summaries[j].TotalSpent) {
			return summaries[i].TotalSpent.GreaterThan(summaries[j].TotalSpent)
		}
		return summaries[i].Category < summaries[j].Category
	})
	return summaries
}

// MonthlySummaries returns per-month spending in chronological order.
// Rows without a valid date cannot be placed in a month and are skipped.
func (a *Analytics) MonthlySummaries() []MonthlySummary {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for i := range a.transactions {
		tx := &a.transactions[i]
		if !tx.AmountValid || !tx.DateValid {
			continue
		}
		month := dateutils.MonthKey(tx.Date)
		totals[month] = totals[month].Add(tx.Amount)
		counts[month]++
	}

	summaries := make([]MonthlySummary, 0, len(totals))
	for month, total := range totals {
		summaries = append(summaries, MonthlySummary{
			Month:            month,
			TotalSpent:       total.Round(2),
			TransactionCount: counts[month],
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Month < summaries[j].Month
	})
	return summaries
}

// TopCategories returns the n largest category summaries.
func (a *Analytics) TopCategories(n int) []CategorySummary {
	summaries := a.CategorySummaries()
	if len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries
}

// TopMerchants returns the n merchants with the highest total spending,
// merchant name breaking ties.
func (a *Analytics) TopMerchants(n int) []MerchantSummary {
	totals := make(map[string]decimal.Decimal)
	for i := range a.transactions {
		tx := &a.transactions[i]
		if !tx.AmountValid {
			continue
		}
		totals[tx.Merchant] = totals[tx.Merchant].Add(tx.Amount)
	}

	summaries := make([]MerchantSummary, 0, len(totals))
	for merchant, total := range totals {
		summaries = append(summaries, MerchantSummary{
			Merchant:   merchant,
			TotalSpent: total.Round(2),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].TotalSpent.Equal(summaries[j].TotalSpent) {
			return summaries[i].TotalSpent.GreaterThan(summaries[j].TotalSpent)
		}
		return summaries[i].Merchant < summaries[j].Merchant
	})
	if len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries
}

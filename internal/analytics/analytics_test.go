package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcbailey111/finance-agent/internal/models"
)

func makeTx(merchant string, amount float64, category, date string) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		Merchant:    merchant,
		Amount:      decimal.NewFromFloat(amount),
		AmountValid: true,
		Category:    category,
		Date:        d,
		DateValid:   true,
	}
}

func sampleBatch() []models.Transaction {
	return []models.Transaction{
		makeTx("Netflix", 9.99, "Subscriptions", "2026-01-15"),
		makeTx("Spotify", 10.99, "Subscriptions", "2026-01-20"),
		makeTx("Starbucks", 5.25, "Food", "2026-01-05"),
		makeTx("Chipotle", 12.50, "Food", "2026-02-03"),
		makeTx("Landlord LLC", 1500.00, "Housing", "2026-02-01"),
	}
}

func TestTotalsAndCount(t *testing.T) {
	a := New(sampleBatch())

	assert.Equal(t, 5, a.TransactionCount())
	assert.Equal(t, "1538.73", a.TotalSpending().StringFixed(2))
}

func TestCategorySummaries(t *testing.T) {
	a := New(sampleBatch())

	summaries := a.CategorySummaries()
	require.Len(t, summaries, 3)

	housing := summaries[0]
	assert.Equal(t, "Housing", housing.Category)
	assert.Equal(t, "1500.00", housing.TotalSpent.StringFixed(2))
	assert.Equal(t, 1, housing.TransactionCount)
	assert.Equal(t, "1500.00", housing.AvgTransaction.StringFixed(2))
	assert.InDelta(t, 97.5, housing.Percentage, 0.1)

	subs := summaries[1]
	assert.Equal(t, "Subscriptions", subs.Category)
	assert.Equal(t, "20.98", subs.TotalSpent.StringFixed(2))
	assert.Equal(t, "10.49", subs.AvgTransaction.StringFixed(2))

	assert.Equal(t, "Food", summaries[2].Category)
}

func TestMonthlySummaries(t *testing.T) {
	a := New(sampleBatch())

	monthly := a.MonthlySummaries()
	require.Len(t, monthly, 2)

	assert.Equal(t, "2026-01", monthly[0].Month)
	assert.Equal(t, "26.23", monthly[0].TotalSpent.StringFixed(2))
	assert.Equal(t, 3, monthly[0].TransactionCount)

	assert.Equal(t, "2026-02", monthly[1].Month)
	assert.Equal(t, "1512.50", monthly[1].TotalSpent.StringFixed(2))
}

func TestTopMerchants(t *testing.T) {
	a := New(sampleBatch())

	merchants := a.TopMerchants(2)
	require.Len(t, merchants, 2)
	assert.Equal(t, "Landlord LLC", merchants[0].Merchant)
	assert.Equal(t, "Chipotle", merchants[1].Merchant)
}

func TestInvalidAmountsExcludedFromTotals(t *testing.T) {
	txs := sampleBatch()
	txs = append(txs, models.Transaction{
		Merchant:  "Mystery",
		RawAmount: "garbage",
		Category:  "Food",
	})

	a := New(txs)
	assert.Equal(t, 6, a.TransactionCount(), "invalid rows still count as transactions")
	assert.Equal(t, "1538.73", a.TotalSpending().StringFixed(2))

	for _, cs := range a.CategorySummaries() {
		if cs.Category == "Food" {
			assert.Equal(t, 2, cs.TransactionCount)
		}
	}
}

func TestRenderDashboard(t *testing.T) {
	report := New(sampleBatch()).RenderDashboard()

	assert.Contains(t, report, "SPENDING ANALYTICS DASHBOARD")
	assert.Contains(t, report, "Total Spending: $1,538.73")
	assert.Contains(t, report, "Total Transactions: 5")
	assert.Contains(t, report, "TOP SPENDING CATEGORIES:")
	assert.Contains(t, report, "Housing")
	assert.Contains(t, report, "MONTHLY SPENDING SUMMARY:")
	assert.Contains(t, report, "2026-01")
	assert.Contains(t, report, "TOP MERCHANTS BY SPENDING:")
	assert.Contains(t, report, "Landlord LLC")
}

func TestRenderDashboardEmpty(t *testing.T) {
	report := New(nil).RenderDashboard()

	assert.Contains(t, report, "Total Spending: $0.00")
	assert.Contains(t, report, "Total Transactions: 0")
	assert.NotContains(t, report, "Average Transaction")
}

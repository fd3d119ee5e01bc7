package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcbailey111/finance-agent/internal/anomaly"
	"github.com/kcbailey111/finance-agent/internal/categorizer"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/recurring"
)

func newTestPipeline() *Pipeline {
	logger := &logging.MockLogger{}
	engine := categorizer.NewRuleEngine(nil, logger)
	router := categorizer.NewRouter(engine, logger)
	anomalyDetector := anomaly.NewDetector(0, 0, logger)
	recurringDetector := recurring.NewDetector(0, 0, 0, 0, logger)
	return New(router, anomalyDetector, recurringDetector, logger)
}

func makeTx(merchant string, amount float64, date string) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		Merchant:    merchant,
		Amount:      decimal.NewFromFloat(amount),
		AmountValid: true,
		Date:        d,
		DateValid:   true,
	}
}

func TestRunFullPipeline(t *testing.T) {
	txs := []models.Transaction{
		makeTx("Netflix", 9.99, "2026-01-15"),
		makeTx("Netflix", 9.99, "2026-02-14"),
		makeTx("Netflix", 9.99, "2026-03-16"),
		makeTx("Starbucks", 5.25, "2026-01-05"),
		makeTx("Unknown Vendor", 500.00, "2026-02-20"),
	}

	result := newTestPipeline().Run(context.Background(), txs)

	require.Len(t, result.Transactions, 5)

	// Categorization.
	assert.Equal(t, models.CategorySubscriptions, txs[0].Category)
	assert.Equal(t, models.SourceRule, txs[0].CategorizationSource)
	assert.Equal(t, models.CategoryFood, txs[3].Category)
	assert.Equal(t, models.CategoryUncategorized, txs[4].Category)
	assert.Equal(t, models.SourceFallback, txs[4].CategorizationSource)

	// Routing stats line up with outcomes.
	assert.Equal(t, 5, result.Routing.Total)
	assert.Equal(t, 4, result.Routing.Accepted)
	assert.Equal(t, 1, result.Routing.Fallback)

	// Candidate tagging.
	assert.Contains(t, txs[0].Tags, models.TagRecurringCandidate)
	assert.NotContains(t, txs[3].Tags, models.TagRecurringCandidate)

	// Anomaly detection flagged the suspicious large transaction.
	assert.True(t, txs[4].IsAnomaly)
	assert.NotEmpty(t, txs[4].AnomalyReasons)

	// Recurring detection clustered the Netflix charges.
	assert.True(t, txs[0].IsRecurring)
	assert.Equal(t, "netflix:9.99", txs[0].RecurringGroup)
	assert.Contains(t, txs[0].Tags, models.TagRecurring)
	assert.False(t, txs[3].IsRecurring)

	// Batch aggregates come from the same run.
	assert.Equal(t, 5, result.Batch.Count)
}

func TestRunLargeBatchUsesWorkerPool(t *testing.T) {
	// Enough transactions to cross the concurrency cutoff; results must be
	// identical to sequential categorization.
	txs := make([]models.Transaction, 0, 300)
	for i := 0; i < 150; i++ {
		txs = append(txs, makeTx(fmt.Sprintf("Starbucks #%d", i), 5.00, "2026-01-05"))
		txs = append(txs, makeTx(fmt.Sprintf("Vendor %d", i), 20.00, "2026-01-06"))
	}

	result := newTestPipeline().Run(context.Background(), txs)

	assert.Equal(t, 300, result.Routing.Total)
	assert.Equal(t, 150, result.Routing.Accepted)
	assert.Equal(t, 150, result.Routing.Fallback)
	for i := range txs {
		if i%2 == 0 {
			assert.Equal(t, models.CategoryFood, txs[i].Category)
		} else {
			assert.Equal(t, models.CategoryUncategorized, txs[i].Category)
		}
	}
}

func TestCategorizeCanceledBatchLeavesNoRowUnrouted(t *testing.T) {
	txs := make([]models.Transaction, 0, 200)
	for i := 0; i < 200; i++ {
		txs = append(txs, makeTx(fmt.Sprintf("Vendor %d", i), 20.00, "2026-01-06"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	routing := newTestPipeline().categorizeAll(ctx, txs)

	// Every row must carry a category and source even though the pool quit
	// early; unreached rows degrade to fallback.
	assert.Equal(t, 200, routing.Total)
	for i := range txs {
		assert.NotEmpty(t, txs[i].Category, "transaction %d has no category", i)
		assert.NotEmpty(t, txs[i].CategorizationSource, "transaction %d has no source", i)
	}
}

func TestTagCandidates(t *testing.T) {
	tests := []struct {
		name     string
		merchant string
		desc     string
		want     bool
	}{
		{"subscription merchant", "Spotify", "", true},
		{"bill keyword in description", "City Power", "electric service", true},
		{"gym membership", "24h Fitness", "gym membership", true},
		{"plain purchase", "Chipotle", "burrito", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []models.Transaction{{Merchant: tt.merchant, Description: tt.desc}}
			tagCandidates(txs)
			if tt.want {
				assert.Contains(t, txs[0].Tags, models.TagRecurringCandidate)
			} else {
				assert.Empty(t, txs[0].Tags)
			}
		})
	}
}

func TestRunEmptyBatch(t *testing.T) {
	result := newTestPipeline().Run(context.Background(), nil)

	assert.Empty(t, result.Transactions)
	assert.Equal(t, 0, result.Routing.Total)
	assert.Equal(t, 0, result.Batch.Count)
}

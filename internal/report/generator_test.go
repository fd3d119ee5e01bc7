package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/pipeline"
	"github.com/kcbailey111/finance-agent/internal/stats"
)

func sampleResult() pipeline.Result {
	txs := []models.Transaction{
		{Merchant: "Netflix", IsRecurring: true, RecurringGroup: "netflix:9.99"},
		{Merchant: "Netflix", IsRecurring: true, RecurringGroup: "netflix:9.99"},
		{
			Merchant:       "Unknown Vendor",
			IsAnomaly:      true,
			AnomalyScore:   12.0,
			AnomalyReasons: []string{"Unknown/suspicious merchant: 'Unknown Vendor'"},
		},
		{Merchant: "Starbucks"},
	}

	var routing models.RoutingStats
	routing.Record(models.SourceRule)
	routing.Record(models.SourceRule)
	routing.Record(models.SourceFallback)
	routing.Record(models.SourceRule)

	return pipeline.Result{
		Transactions: txs,
		Routing:      routing,
		Batch:        stats.Batch{Count: 4},
	}
}

func TestSummarize(t *testing.T) {
	g := NewGenerator(&logging.MockLogger{})

	summary := g.Summarize(sampleResult())

	assert.Equal(t, 4, summary.TransactionCount)
	assert.Equal(t, 1, summary.AnomalyCount)
	assert.Equal(t, 25.0, summary.AnomalyRate)
	assert.Equal(t, 1, summary.AnomaliesByType["Unknown Merchant"])
	assert.Equal(t, 1, summary.RecurringGroups)
	assert.Equal(t, 3, summary.Routing.Accepted)
	assert.Equal(t, 75.0, summary.AcceptRate)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	g := NewGenerator(&logging.MockLogger{})
	path := filepath.Join(t.TempDir(), "reports", "summary.json")

	require.NoError(t, g.WriteJSON(g.Summarize(sampleResult()), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got RunSummary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 4, got.TransactionCount)
	assert.Equal(t, 1, got.AnomalyCount)
	assert.Equal(t, 1, got.RecurringGroups)
}

// Package report generates machine-readable run summaries for a pipeline
// run: routing counters, batch statistics, and the anomaly breakdown.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kcbailey111/finance-agent/internal/anomaly"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/pipeline"
	"github.com/kcbailey111/finance-agent/internal/stats"
)

// RunSummary is the serializable outcome of one enrichment run.
type RunSummary struct {
	TransactionCount int                 `json:"transaction_count"`
	Routing          models.RoutingStats `json:"routing"`
	AcceptRate       float64             `json:"accept_rate"`
	Batch            stats.Batch         `json:"batch_stats"`
	AnomalyCount     int                 `json:"anomaly_count"`
	AnomalyRate      float64             `json:"anomaly_rate"`
	AnomaliesByType  map[string]int      `json:"anomalies_by_type"`
	RecurringGroups  int                 `json:"recurring_groups"`
}

// Generator builds run summaries from pipeline results.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a new summary generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logger}
}

// Summarize condenses a pipeline result into a RunSummary.
func (g *Generator) Summarize(result pipeline.Result) RunSummary {
	anomalySummary := anomaly.Summarize(result.Transactions, 1)

	groups := make(map[string]struct{})
	for i := range result.Transactions {
		if result.Transactions[i].IsRecurring {
			groups[result.Transactions[i].RecurringGroup] = struct{}{}
		}
	}

	return RunSummary{
		TransactionCount: len(result.Transactions),
		Routing:          result.Routing,
		AcceptRate:       result.Routing.AcceptRate(),
		Batch:            result.Batch,
		AnomalyCount:     anomalySummary.TotalAnomalies,
		AnomalyRate:      anomalySummary.AnomalyRate,
		AnomaliesByType:  anomalySummary.ByType,
		RecurringGroups:  len(groups),
	}
}

// WriteJSON writes the summary as indented JSON to path.
func (g *Generator) WriteJSON(summary RunSummary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	g.logger.Info("Run summary written",
		logging.Field{Key: logging.FieldOutputFile, Value: path})
	return nil
}

// Package pipeline orchestrates a full enrichment run over a transaction
// batch: categorization, candidate tagging, anomaly detection, and
// recurring charge detection, in that order.
package pipeline

import (
	"context"

	"github.com/kcbailey111/finance-agent/internal/anomaly"
	"github.com/kcbailey111/finance-agent/internal/categorizer"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/recurring"
	"github.com/kcbailey111/finance-agent/internal/stats"
)

// Pipeline wires the processing stages together. Stages always run in the
// same order because later stages read fields earlier stages write:
// anomaly detection reads categories, recurrence detection reads validity
// flags, and both read nothing from each other.
type Pipeline struct {
	router    *categorizer.Router
	anomalies *anomaly.Detector
	recurring *recurring.Detector
	logger    logging.Logger
}

// Result is the outcome of a full pipeline run.
type Result struct {
	Transactions []models.Transaction
	Batch        stats.Batch
	Routing      models.RoutingStats
}

// New creates a Pipeline from its stage components.
func New(router *categorizer.Router, anomalies *anomaly.Detector, recurringDetector *recurring.Detector, logger logging.Logger) *Pipeline {
	return &Pipeline{
		router:    router,
		anomalies: anomalies,
		recurring: recurringDetector,
		logger:    logger,
	}
}

// Run executes every stage over the batch, mutating the transactions in
// place and returning them with the run's aggregates.
func (p *Pipeline) Run(ctx context.Context, transactions []models.Transaction) Result {
	routing := p.categorizeAll(ctx, transactions)
	routing.LogSummary(p.logger)

	tagCandidates(transactions)

	batch := p.anomalies.Detect(transactions)
	p.recurring.Mark(transactions)

	if err := p.router.SaveLearned(); err != nil {
		p.logger.WithError(err).Warn("Failed to persist learned merchant overrides")
	}

	return Result{
		Transactions: transactions,
		Batch:        batch,
		Routing:      routing,
	}
}

package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/kcbailey111/finance-agent/internal/categorizer"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// sequentialCutoff is the batch size below which worker-pool overhead
// outweighs the parallelism win.
const sequentialCutoff = 100

// categorizeAll routes every transaction and tallies the outcomes. Large
// batches fan out over a worker pool; each worker owns disjoint elements of
// the slice, so no per-transaction locking is needed.
func (p *Pipeline) categorizeAll(ctx context.Context, transactions []models.Transaction) models.RoutingStats {
	var outcomes []categorizer.Outcome
	if len(transactions) < sequentialCutoff {
		outcomes = p.categorizeSequential(ctx, transactions)
	} else {
		outcomes = p.categorizeConcurrent(ctx, transactions)
	}

	var routing models.RoutingStats
	for _, outcome := range outcomes {
		routing.Record(outcome.Source)
	}
	return routing
}

func (p *Pipeline) categorizeSequential(ctx context.Context, transactions []models.Transaction) []categorizer.Outcome {
	outcomes := make([]categorizer.Outcome, len(transactions))
	for i := range transactions {
		outcomes[i] = p.router.Categorize(ctx, &transactions[i])
	}
	return outcomes
}

func (p *Pipeline) categorizeConcurrent(ctx context.Context, transactions []models.Transaction) []categorizer.Outcome {
	workerCount := runtime.NumCPU()
	jobs := make(chan int, workerCount)
	outcomes := make([]categorizer.Outcome, len(transactions))

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = p.router.Categorize(ctx, &transactions[idx])
			}
		}()
	}

	for i := range transactions {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			p.fallbackUnrouted(transactions, outcomes)
			return outcomes
		}
	}
	close(jobs)
	wg.Wait()

	p.logger.Debug("Concurrent categorization completed",
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
		logging.Field{Key: "workers", Value: workerCount})

	return outcomes
}

// fallbackUnrouted assigns a fallback outcome to every transaction the
// pool never reached, so no row leaves categorization without a category
// even when the run is canceled mid-batch.
func (p *Pipeline) fallbackUnrouted(transactions []models.Transaction, outcomes []categorizer.Outcome) {
	unrouted := 0
	for i := range transactions {
		if transactions[i].CategorizationSource != "" {
			continue
		}
		outcomes[i] = categorizer.Outcome{
			Source:   models.SourceFallback,
			Category: models.CategoryUncategorized,
			Reason:   "categorization canceled before this transaction was routed",
		}
		transactions[i].Category = models.CategoryUncategorized
		transactions[i].CategoryConfidence = 0
		transactions[i].CategorizationSource = models.SourceFallback
		unrouted++
	}
	if unrouted > 0 {
		p.logger.Warn("Categorization canceled before batch completed",
			logging.Field{Key: logging.FieldCount, Value: unrouted})
	}
}

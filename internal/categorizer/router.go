package categorizer

import (
	"context"
	"sync/atomic"

	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// Outcome is the routing decision for a single transaction. Exactly one of
// the five sources is assigned, and RuleConfidence always carries the rule
// engine's original confidence so downstream audits can see why the router
// took the path it did.
type Outcome struct {
	Source         models.Source
	Category       string
	Confidence     float64
	Reason         string
	RuleConfidence float64
}

// Router decides, per transaction, whether the rule engine's verdict stands
// or the transaction escalates to a secondary classifier. The decision is a
// pure function of the rule confidence and the two thresholds:
//
//	confidence >= accept           keep the rule verdict
//	escalate <= confidence < accept  consult the secondary classifier
//	confidence < escalate          fall back to Uncategorized directly
type Router struct {
	engine            *RuleEngine
	secondary         SecondaryClassifier
	acceptThreshold   float64
	escalateThreshold float64
	learnFromVerdicts bool
	logger            logging.Logger
	escalations       atomic.Int64
}

// RouterOption configures optional Router behavior.
type RouterOption func(*Router)

// WithSecondary attaches a secondary classifier. Without one, transactions
// in the escalation band resolve to SourceUnavailable.
func WithSecondary(sc SecondaryClassifier) RouterOption {
	return func(r *Router) { r.secondary = sc }
}

// WithThresholds overrides the default accept and escalate thresholds.
func WithThresholds(accept, escalate float64) RouterOption {
	return func(r *Router) {
		r.acceptThreshold = accept
		r.escalateThreshold = escalate
	}
}

// WithVerdictLearning makes accepted secondary verdicts feed the merchant
// override table, so repeat merchants skip escalation on later runs.
func WithVerdictLearning() RouterOption {
	return func(r *Router) { r.learnFromVerdicts = true }
}

// NewRouter creates a Router over the given rule engine.
func NewRouter(engine *RuleEngine, logger logging.Logger, opts ...RouterOption) *Router {
	r := &Router{
		engine:            engine,
		acceptThreshold:   models.DefaultAcceptThreshold,
		escalateThreshold: models.DefaultEscalateThreshold,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route categorizes a single transaction and returns the routing outcome.
// It never returns an error: classifier failures become SourceError outcomes
// so one bad escalation cannot abort a batch.
func (r *Router) Route(ctx context.Context, tx *models.Transaction) Outcome {
	category, confidence := r.engine.Categorize(tx)
	return r.decide(ctx, tx, category, confidence)
}

// decide is the threshold state machine, split from Route so the boundary
// semantics (>= on both thresholds) are testable with arbitrary confidences.
func (r *Router) decide(ctx context.Context, tx *models.Transaction, category models.Category, confidence float64) Outcome {
	switch {
	case confidence >= r.acceptThreshold:
		return Outcome{
			Source:         models.SourceRule,
			Category:       category.Name,
			Confidence:     confidence,
			Reason:         category.Description,
			RuleConfidence: confidence,
		}

	case confidence >= r.escalateThreshold:
		return r.escalate(ctx, tx, confidence)

	default:
		return Outcome{
			Source:         models.SourceFallback,
			Category:       models.CategoryUncategorized,
			Confidence:     confidence,
			Reason:         "rule confidence below escalation threshold",
			RuleConfidence: confidence,
		}
	}
}

// escalate consults the secondary classifier for a transaction in the
// escalation band.
func (r *Router) escalate(ctx context.Context, tx *models.Transaction, ruleConfidence float64) Outcome {
	if r.secondary == nil {
		return Outcome{
			Source:         models.SourceUnavailable,
			Category:       models.CategoryUncategorized,
			Confidence:     ruleConfidence,
			Reason:         "no secondary classifier configured",
			RuleConfidence: ruleConfidence,
		}
	}

	r.escalations.Add(1)
	verdict, err := r.secondary.Classify(ctx, *tx)
	if err != nil {
		r.logger.WithError(err).WithFields(
			logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
			logging.Field{Key: logging.FieldMerchant, Value: tx.Merchant},
		).Warn("Secondary classifier failed")
		return Outcome{
			Source:         models.SourceError,
			Category:       models.CategoryUncategorized,
			Confidence:     0,
			Reason:         err.Error(),
			RuleConfidence: ruleConfidence,
		}
	}

	verdict = sanitizeVerdict(verdict)

	// A hesitant secondary answer is worse than no answer: keep the
	// confidence for audit but discard the category.
	if verdict.Confidence < models.SecondaryMinConfidence {
		verdict.Category = models.CategoryUncategorized
	}

	if r.learnFromVerdicts && verdict.Category != models.CategoryUncategorized {
		r.engine.LearnOverride(tx.Merchant, verdict.Category)
	}

	return Outcome{
		Source:         models.SourceEscalated,
		Category:       verdict.Category,
		Confidence:     verdict.Confidence,
		Reason:         verdict.Reason,
		RuleConfidence: ruleConfidence,
	}
}

// Apply writes a routing outcome onto the transaction.
func (r *Router) Apply(tx *models.Transaction, outcome Outcome) {
	tx.Category = outcome.Category
	tx.CategoryConfidence = outcome.Confidence
	tx.CategorizationSource = outcome.Source
}

// Categorize routes a transaction and applies the outcome in one step.
func (r *Router) Categorize(ctx context.Context, tx *models.Transaction) Outcome {
	outcome := r.Route(ctx, tx)
	r.Apply(tx, outcome)
	return outcome
}

// Escalations reports how many secondary classifier calls this router has
// attempted, including ones that failed.
func (r *Router) Escalations() int64 {
	return r.escalations.Load()
}

// SaveLearned persists any merchant overrides learned during routing.
func (r *Router) SaveLearned() error {
	return r.engine.SaveOverrides()
}

package categorizer

import (
	"context"
	"strings"

	"github.com/kcbailey111/finance-agent/internal/models"
)

// Verdict is a secondary classifier's answer for a single transaction.
type Verdict struct {
	Category   string
	Confidence float64
	Reason     string
}

// SecondaryClassifier is consulted for transactions the rule engine could
// not categorize with enough confidence. Implementations may call external
// services; they must honor the context for cancellation and timeouts.
type SecondaryClassifier interface {
	// Classify returns a category verdict for the transaction.
	// An error means the classifier itself failed (network, quota); a
	// low-confidence answer is not an error.
	Classify(ctx context.Context, tx models.Transaction) (Verdict, error)

	// Name identifies the classifier in logs and routing outcomes.
	Name() string
}

// sanitizeVerdict fills in defaults for fields the classifier left empty and
// clamps confidence into [0, 1]. Malformed answers degrade to Uncategorized
// rather than failing the transaction.
func sanitizeVerdict(v Verdict) Verdict {
	v.Category = strings.TrimSpace(v.Category)
	if v.Category == "" {
		v.Category = models.CategoryUncategorized
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	if strings.TrimSpace(v.Reason) == "" {
		v.Reason = "no explanation provided"
	}
	return v
}

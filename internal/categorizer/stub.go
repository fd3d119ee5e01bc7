package categorizer

import (
	"context"
	"strings"

	"github.com/kcbailey111/finance-agent/internal/models"
)

// StubClassifier is a deterministic SecondaryClassifier for tests and for
// running the pipeline without network access. Verdicts are looked up by
// lower-cased merchant name; misses return Default.
type StubClassifier struct {
	Verdicts map[string]Verdict
	Default  Verdict
	Err      error

	// Calls records the merchants classified, in order, for assertions on
	// escalation behavior.
	Calls []string
}

// NewStubClassifier returns a stub whose misses resolve to Uncategorized
// with zero confidence.
func NewStubClassifier() *StubClassifier {
	return &StubClassifier{
		Verdicts: make(map[string]Verdict),
		Default: Verdict{
			Category:   models.CategoryUncategorized,
			Confidence: 0,
			Reason:     "no explanation provided",
		},
	}
}

// Name implements SecondaryClassifier.
func (s *StubClassifier) Name() string {
	return "stub"
}

// Classify implements SecondaryClassifier.
func (s *StubClassifier) Classify(_ context.Context, tx models.Transaction) (Verdict, error) {
	s.Calls = append(s.Calls, tx.Merchant)
	if s.Err != nil {
		return Verdict{}, s.Err
	}
	if verdict, ok := s.Verdicts[strings.ToLower(tx.Merchant)]; ok {
		return verdict, nil
	}
	return s.Default, nil
}

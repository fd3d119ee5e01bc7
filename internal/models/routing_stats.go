// Package models provides the data structures used throughout the application.
package models

import (
	"github.com/kcbailey111/finance-agent/internal/logging"
)

// RoutingStats tracks how transactions moved through the escalation router
// during a batch run.
type RoutingStats struct {
	Total       int // Total number of transactions routed
	Accepted    int // Rule verdict accepted verbatim
	Escalated   int // Sent to the secondary classifier
	Fallback    int // Confidence too low to escalate
	Unavailable int // Would have escalated but no classifier configured
	Errors      int // Secondary classifier failed
}

// Record increments the counter matching a categorization source.
func (rs *RoutingStats) Record(source Source) {
	rs.Total++
	switch source {
	case SourceRule:
		rs.Accepted++
	case SourceEscalated:
		rs.Escalated++
	case SourceFallback:
		rs.Fallback++
	case SourceUnavailable:
		rs.Unavailable++
	case SourceError:
		rs.Errors++
	}
}

// AcceptRate returns the share of transactions resolved by the rule table
// alone, as a percentage.
func (rs RoutingStats) AcceptRate() float64 {
	if rs.Total == 0 {
		return 0.0
	}
	return float64(rs.Accepted) / float64(rs.Total) * 100.0
}

// LogSummary logs a summary of routing statistics.
func (rs RoutingStats) LogSummary(logger logging.Logger) {
	if logger == nil {
		return
	}

	logger.Info("Categorization routing summary",
		logging.Field{Key: "total_transactions", Value: rs.Total},
		logging.Field{Key: "rule_accepted", Value: rs.Accepted},
		logging.Field{Key: "escalated", Value: rs.Escalated},
		logging.Field{Key: "fallback", Value: rs.Fallback},
		logging.Field{Key: "unavailable", Value: rs.Unavailable},
		logging.Field{Key: "errors", Value: rs.Errors},
		logging.Field{Key: "accept_rate", Value: rs.AcceptRate()},
	)
}

package models

// Categories
const (
	CategoryUncategorized  = "Uncategorized"
	CategoryFood           = "Food"
	CategoryTransportation = "Transportation"
	CategorySubscriptions  = "Subscriptions"
	CategoryUtilities      = "Utilities"
	CategoryHousing        = "Housing"
)

// Confidence levels emitted by the rule categorizer.
const (
	// RuleMatchConfidence is assigned when a keyword rule matches.
	RuleMatchConfidence = 0.9
	// RuleMissConfidence is assigned when no rule matches.
	RuleMissConfidence = 0.3
)

// Default routing thresholds. Confidence at or above AcceptThreshold keeps
// the rule verdict; below EscalateThreshold skips escalation entirely.
const (
	DefaultAcceptThreshold   = 0.75
	DefaultEscalateThreshold = 0.40
	// SecondaryMinConfidence is the floor under which a secondary
	// classifier's category is discarded in favor of Uncategorized.
	SecondaryMinConfidence = 0.5
)

// Default anomaly detection thresholds.
const (
	DefaultZScoreThreshold = 2.5
	DefaultIQRMultiplier   = 1.5
	// MinStatisticalBatch is the smallest number of valid amounts the
	// statistical passes will run on.
	MinStatisticalBatch = 3
	// LargeTransactionFactor flags amounts above this multiple of the
	// batch median.
	LargeTransactionFactor = 5.0
)

// Default recurrence detection thresholds.
const (
	DefaultMinOccurrences  = 3
	DefaultMonthlyMinDays  = 25
	DefaultMonthlyMaxDays  = 35
	DefaultAmountTolerance = 0.15
	// AmountConsistencyRatio is the share of a merchant's transactions
	// that must sit within tolerance of the median amount.
	AmountConsistencyRatio = 0.6
	// NextDueIntervalDays is the projection horizon for the next expected
	// charge of a recurring group.
	NextDueIntervalDays = 30
)

// Tags applied during enrichment and recurrence detection.
const (
	// TagRecurring marks members of an accepted recurring group.
	TagRecurring = "recurring"
	// TagRecurringCandidate marks transactions whose merchant text looks
	// like a subscription or utility bill, ahead of cadence analysis.
	TagRecurringCandidate = "recurring_candidate"
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionReportFile = 0644
)

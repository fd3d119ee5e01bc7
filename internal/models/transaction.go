// Package models provides the data structures used throughout the application.
package models

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which stage of the categorization pipeline produced
// a transaction's category.
type Source string

const (
	// SourceRule means the rule table matched with high confidence.
	SourceRule Source = "rule"
	// SourceEscalated means the secondary classifier provided the verdict.
	SourceEscalated Source = "escalated"
	// SourceFallback means rule confidence was too low to bother escalating.
	SourceFallback Source = "fallback"
	// SourceUnavailable means escalation was warranted but no secondary
	// classifier was configured. Distinct from SourceFallback so callers can
	// tell "low confidence, no review" from "low confidence, no reviewer".
	SourceUnavailable Source = "unavailable"
	// SourceError means the secondary classifier failed mid-escalation.
	SourceError Source = "error"
)

// Transaction represents a single financial transaction flowing through the
// enrichment pipeline. Identity fields are set at ingestion; the remaining
// fields are filled in by the categorizer, anomaly detector, and recurring
// charge detector.
type Transaction struct {
	ID          string          `csv:"ID"`
	Date        time.Time       `csv:"-"`
	Merchant    string          `csv:"Merchant"`
	Description string          `csv:"Description"`
	Amount      decimal.Decimal `csv:"-"`

	// RawAmount and RawDate preserve the original input text so rows with
	// unparseable values survive the run untouched.
	RawAmount string `csv:"Amount"`
	RawDate   string `csv:"Date"`

	// DateValid and AmountValid gate participation in statistical
	// computation and recurrence clustering. Invalid rows are carried
	// through the pipeline but never flagged or clustered.
	DateValid   bool `csv:"-"`
	AmountValid bool `csv:"-"`

	// Source names the input file the row came from when aggregating
	// multiple account exports.
	Source string `csv:"Source"`

	Category             string  `csv:"Category"`
	CategoryConfidence   float64 `csv:"CategoryConfidence"`
	CategorizationSource Source  `csv:"CategorizationSource"`

	IsAnomaly      bool     `csv:"IsAnomaly"`
	AnomalyReasons []string `csv:"-"`
	AnomalyScore   float64  `csv:"AnomalyScore"`

	IsRecurring    bool     `csv:"IsRecurring"`
	RecurringGroup string   `csv:"RecurringGroup"`
	Tags           []string `csv:"-"`
}

// PartyText returns the text the categorizer and anomaly detector match
// keywords against: the merchant name, falling back to the description.
func (t *Transaction) PartyText() string {
	if strings.TrimSpace(t.Merchant) != "" {
		return t.Merchant
	}
	return t.Description
}

// AmountFloat returns the amount as float64 for statistical computation.
// Monetary output always goes through decimal; this accessor exists only
// for the z-score/IQR math where float precision is acceptable.
func (t *Transaction) AmountFloat() float64 {
	f, _ := t.Amount.Float64()
	return f
}

// AddAnomalyReason appends a reason unless an existing reason already
// contains it as a substring. Pass order is preserved because passes run
// in a fixed sequence and only ever append.
func (t *Transaction) AddAnomalyReason(reason string) {
	for _, existing := range t.AnomalyReasons {
		if strings.Contains(existing, reason) {
			return
		}
	}
	t.AnomalyReasons = append(t.AnomalyReasons, reason)
}

// RaiseAnomalyScore sets the anomaly score to the maximum of its current
// value and score. Scores never decrease within a run.
func (t *Transaction) RaiseAnomalyScore(score float64) {
	if score > t.AnomalyScore {
		t.AnomalyScore = score
	}
}

// AddTag inserts tag into the tag set, keeping the set deduplicated and
// sorted so output is stable across runs.
func (t *Transaction) AddTag(tag string) {
	for _, existing := range t.Tags {
		if existing == tag {
			return
		}
	}
	t.Tags = append(t.Tags, tag)
	sort.Strings(t.Tags)
}

// currencyNoise strips currency symbols and whitespace before separator
// disambiguation.
var currencyNoise = regexp.MustCompile(`[€$£¥\s]`)

// ParseAmount parses a string amount into a decimal, tolerating currency
// symbols and codes, apostrophe/US/European thousands separators
// ("1'234.56", "1,234.56", "1.234,56"), and comma decimal points. The
// boolean reports whether the input was numeric at all.
func ParseAmount(amountStr string) (decimal.Decimal, bool) {
	amount := strings.TrimSpace(amountStr)
	amount = strings.ReplaceAll(amount, "USD", "")
	amount = strings.ReplaceAll(amount, "EUR", "")
	amount = strings.ReplaceAll(amount, "CHF", "")
	amount = currencyNoise.ReplaceAllString(amount, "")
	amount = strings.ReplaceAll(amount, "'", "")

	switch {
	case strings.Contains(amount, ",") && strings.Contains(amount, "."):
		if strings.LastIndex(amount, ".") < strings.LastIndex(amount, ",") {
			// European style: dot thousands, comma decimal (1.234,56).
			amount = strings.ReplaceAll(amount, ".", "")
			amount = strings.ReplaceAll(amount, ",", ".")
		} else {
			// US style: comma thousands, dot decimal (1,234.56).
			amount = strings.ReplaceAll(amount, ",", "")
		}

	case strings.Contains(amount, ","):
		// A lone comma is a decimal separator when at most two digits
		// follow it (1234,56), a thousands separator otherwise (1,234).
		parts := strings.Split(amount, ",")
		if len(parts[len(parts)-1]) <= 2 {
			amount = strings.ReplaceAll(amount, ",", ".")
		} else {
			amount = strings.ReplaceAll(amount, ",", "")
		}
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, false
	}
	return dec, true
}

package pipeline

import (
	"strings"

	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/textutils"
)

// Keyword sets for tagging likely subscriptions and utility bills before
// cadence analysis has enough history to confirm them.
var (
	subscriptionKeywords = []string{
		"netflix", "spotify", "hulu", "prime", "apple", "google",
		"microsoft", "adobe", "gym", "membership", "subscription",
	}
	billKeywords = []string{"electric", "water", "internet", "phone"}
)

// tagCandidates adds the recurring-candidate tag to transactions whose
// merchant or description text looks like a subscription or bill. The
// recurring detector later confirms or ignores the hint; the tag itself is
// informational and never gates detection.
func tagCandidates(transactions []models.Transaction) {
	for i := range transactions {
		tx := &transactions[i]
		text := strings.ToLower(tx.Merchant + " " + tx.Description)
		if textutils.ContainsAny(text, subscriptionKeywords) || textutils.ContainsAny(text, billKeywords) {
			tx.AddTag(models.TagRecurringCandidate)
		}
	}
}

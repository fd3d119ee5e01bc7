// Package recurring detects recurring charges (subscriptions, bills) and
// projects a simple bill calendar of expected next due dates.
package recurring

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kcbailey111/finance-agent/internal/dateutils"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/stats"
	"github.com/kcbailey111/finance-agent/internal/textutils"
)

// Detector finds merchants whose charges repeat on a monthly-like cadence
// with consistent amounts. A merchant group is accepted when it has enough
// occurrences, at least 60% of its amounts sit within tolerance of the
// median, and the median gap between consecutive charges looks monthly.
type Detector struct {
	minOccurrences  int
	monthlyMinDays  int
	monthlyMaxDays  int
	amountTolerance float64
	logger          logging.Logger
}

// NewDetector creates a Detector. Out-of-range parameters fall back to the
// defaults (3 occurrences, 25-35 day cadence, 15% tolerance).
func NewDetector(minOccurrences, monthlyMinDays, monthlyMaxDays int, amountTolerance float64, logger logging.Logger) *Detector {
	if minOccurrences < 2 {
		minOccurrences = models.DefaultMinOccurrences
	}
	if monthlyMinDays < 1 || monthlyMaxDays < monthlyMinDays {
		monthlyMinDays = models.DefaultMonthlyMinDays
		monthlyMaxDays = models.DefaultMonthlyMaxDays
	}
	if amountTolerance <= 0 || amountTolerance >= 1 {
		amountTolerance = models.DefaultAmountTolerance
	}
	return &Detector{
		minOccurrences:  minOccurrences,
		monthlyMinDays:  monthlyMinDays,
		monthlyMaxDays:  monthlyMaxDays,
		amountTolerance: amountTolerance,
		logger:          logger,
	}
}

// Mark flags recurring transactions in place. Members of an accepted group
// get IsRecurring, a RecurringGroup key of the form
// "<normalized merchant>:<median amount>", and the "recurring" tag.
func (d *Detector) Mark(transactions []models.Transaction) {
	groups := d.groupByMerchant(transactions)

	accepted := 0
	for _, key := range sortedKeys(groups) {
		indices := groups[key]
		if len(indices) < d.minOccurrences {
			continue
		}

		median, ok := d.amountsConsistent(transactions, indices)
		if !ok {
			continue
		}
		if !d.cadenceMonthly(transactions, indices) {
			continue
		}

		groupKey := key + ":" + median.StringFixed(2)
		for _, idx := range indices {
			tx := &transactions[idx]
			tx.IsRecurring = true
			tx.RecurringGroup = groupKey
			tx.AddTag(models.TagRecurring)
		}
		accepted++

		d.logger.WithFields(
			logging.Field{Key: logging.FieldGroup, Value: groupKey},
			logging.Field{Key: logging.FieldCount, Value: len(indices)},
		).Debug("Recurring charge group accepted")
	}

	d.logger.WithField(logging.FieldCount, accepted).Info("Recurring charge detection complete")
}

// groupByMerchant buckets transaction indices by normalized merchant text.
// Rows with invalid amounts or dates never participate in clustering, and
// rows whose merchant normalizes to nothing cannot be grouped meaningfully.
func (d *Detector) groupByMerchant(transactions []models.Transaction) map[string][]int {
	groups := make(map[string][]int)
	for i := range transactions {
		tx := &transactions[i]
		if !tx.AmountValid || !tx.DateValid {
			continue
		}
		key := textutils.NormalizeMerchant(tx.PartyText())
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], i)
	}
	return groups
}

// amountsConsistent checks that at least 60% of the group's amounts sit
// within tolerance of the median, and returns that median.
func (d *Detector) amountsConsistent(transactions []models.Transaction, indices []int) (decimal.Decimal, bool) {
	amounts := make([]decimal.Decimal, len(indices))
	for i, idx := range indices {
		amounts[i] = transactions[idx].Amount
	}

	median := medianDecimal(amounts)
	if median.IsZero() {
		return decimal.Zero, false
	}

	medianAbs, _ := median.Abs().Float64()
	medianFloat, _ := median.Float64()
	within := 0
	for _, amount := range amounts {
		f, _ := amount.Float64()
		deviation := f - medianFloat
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation/medianAbs <= d.amountTolerance {
			within++
		}
	}

	if float64(within)/float64(len(amounts)) < models.AmountConsistencyRatio {
		return decimal.Zero, false
	}
	return median, true
}

// cadenceMonthly checks that the median gap between consecutive charges
// falls inside the configured monthly window.
func (d *Detector) cadenceMonthly(transactions []models.Transaction, indices []int) bool {
	dates := make([]int64, len(indices))
	for i, idx := range indices {
		dates[i] = dateutils.Truncate(transactions[idx].Date).Unix()
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gaps = append(gaps, float64(dates[i]-dates[i-1])/86400)
	}
	if len(gaps) == 0 {
		return false
	}

	gapMedian := int(stats.Median(gaps))
	return gapMedian >= d.monthlyMinDays && gapMedian <= d.monthlyMaxDays
}

// medianDecimal computes the median in decimal arithmetic so group keys
// never pick up float formatting noise.
func medianDecimal(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}

func sortedKeys(groups map[string][]int) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

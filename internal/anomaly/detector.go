// Package anomaly flags unusual transactions using statistical methods and
// merchant pattern analysis.
//
// Detection runs in two phases. Phase one computes batch aggregates over the
// untouched input (see internal/stats); phase two runs four flagging passes
// in a fixed order against those precomputed aggregates. Because no pass
// ever reads another pass's flags, re-running detection on already-flagged
// data changes nothing.
package anomaly

import (
	"fmt"
	"strings"

	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/stats"
)

// suspiciousMerchantKeywords flag generic or unidentifiable merchant names.
var suspiciousMerchantKeywords = []string{
	"unknown", "payment", "card transaction", "square",
	"transfer", "pending", "unidentified",
}

// Detector flags anomalous transactions. Passes only ever add: flags are
// OR-merged, scores max-merged, and reasons appended, so a transaction
// flagged by several passes carries every reason and its highest score.
type Detector struct {
	zScoreThreshold float64
	iqrMultiplier   float64
	logger          logging.Logger
}

// NewDetector creates a Detector. Non-positive thresholds fall back to the
// defaults (z-score 2.5, IQR multiplier 1.5).
func NewDetector(zScoreThreshold, iqrMultiplier float64, logger logging.Logger) *Detector {
	if zScoreThreshold <= 0 {
		zScoreThreshold = models.DefaultZScoreThreshold
	}
	if iqrMultiplier <= 0 {
		iqrMultiplier = models.DefaultIQRMultiplier
	}
	return &Detector{
		zScoreThreshold: zScoreThreshold,
		iqrMultiplier:   iqrMultiplier,
		logger:          logger,
	}
}

// Detect runs all four passes over the transactions, mutating them in
// place, and returns the batch aggregates the passes were judged against.
func (d *Detector) Detect(transactions []models.Transaction) stats.Batch {
	batch := stats.Compute(transactions)

	d.flagStatisticalOutliers(transactions, batch)
	d.flagCategoryOutliers(transactions, batch)
	d.flagSuspiciousMerchants(transactions)
	d.flagLargeTransactions(transactions, batch)

	flagged := 0
	for i := range transactions {
		if transactions[i].IsAnomaly {
			flagged++
		}
	}
	d.logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
		logging.Field{Key: "flagged", Value: flagged},
	).Info("Anomaly detection complete")

	return batch
}

// flagStatisticalOutliers is the whole-batch pass: z-score sub-pass, then
// IQR sub-pass. Both need at least 3 valid amounts to say anything
// meaningful, and each sub-pass additionally needs nonzero spread.
func (d *Detector) flagStatisticalOutliers(transactions []models.Transaction, batch stats.Batch) {
	if batch.Count < models.MinStatisticalBatch {
		return
	}

	if batch.Std > 0 {
		for i := range transactions {
			tx := &transactions[i]
			if !tx.AmountValid {
				continue
			}
			z := (tx.AmountFloat() - batch.Mean) / batch.Std
			if z < 0 {
				z = -z
			}
			if z > d.zScoreThreshold {
				tx.IsAnomaly = true
				tx.AddAnomalyReason(fmt.Sprintf(
					"Statistical outlier: Z-score %.2f (amount $%.2f vs mean $%.2f)",
					z, tx.AmountFloat(), batch.Mean))
				tx.RaiseAnomalyScore(z)
			}
		}
	}

	if batch.IQR > 0 {
		lower := batch.Q1 - d.iqrMultiplier*batch.IQR
		upper := batch.Q3 + d.iqrMultiplier*batch.IQR
		for i := range transactions {
			tx := &transactions[i]
			if !tx.AmountValid {
				continue
			}
			amount := tx.AmountFloat()
			if amount >= lower && amount <= upper {
				continue
			}
			tx.IsAnomaly = true
			tx.AddAnomalyReason(fmt.Sprintf(
				"IQR outlier: Amount $%.2f outside range [$%.2f, $%.2f]",
				amount, lower, upper))
			var score float64
			if amount > upper {
				score = (amount - upper) / batch.IQR
			} else {
				score = (lower - amount) / batch.IQR
			}
			tx.RaiseAnomalyScore(score)
		}
	}
}

// flagCategoryOutliers flags amounts more than two standard deviations
// above their category's mean. Only the high side is checked: an unusually
// small charge in a category is not a spending concern.
func (d *Detector) flagCategoryOutliers(transactions []models.Transaction, batch stats.Batch) {
	for i := range transactions {
		tx := &transactions[i]
		if !tx.AmountValid {
			continue
		}
		cs, ok := batch.PerCategory[tx.Category]
		if !ok || cs.Count < 2 || cs.Std <= 0 {
			continue
		}
		amount := tx.AmountFloat()
		threshold := cs.Mean + 2*cs.Std
		if amount <= threshold {
			continue
		}
		tx.IsAnomaly = true
		tx.AddAnomalyReason(fmt.Sprintf(
			"Category outlier: $%.2f in '%s' (category avg: $%.2f)",
			amount, tx.Category, cs.Mean))
		tx.RaiseAnomalyScore((amount - cs.Mean) / cs.Std)
	}
}

// flagSuspiciousMerchants flags generic or unidentifiable merchant names.
// This pass needs no statistics and runs regardless of batch size.
func (d *Detector) flagSuspiciousMerchants(transactions []models.Transaction) {
	for i := range transactions {
		tx := &transactions[i]
		merchant := strings.ToLower(tx.Merchant)
		for _, keyword := range suspiciousMerchantKeywords {
			if strings.Contains(merchant, keyword) {
				tx.IsAnomaly = true
				tx.AddAnomalyReason(fmt.Sprintf(
					"Unknown/suspicious merchant: '%s'", tx.Merchant))
				tx.RaiseAnomalyScore(1.0)
				break
			}
		}
	}
}

// flagLargeTransactions flags amounts above five times the batch median.
func (d *Detector) flagLargeTransactions(transactions []models.Transaction, batch stats.Batch) {
	if batch.Count < models.MinStatisticalBatch || batch.Median <= 0 {
		return
	}

	threshold := batch.Median * models.LargeTransactionFactor
	for i := range transactions {
		tx := &transactions[i]
		if !tx.AmountValid {
			continue
		}
		amount := tx.AmountFloat()
		if amount <= threshold {
			continue
		}
		tx.IsAnomaly = true
		tx.AddAnomalyReason(fmt.Sprintf(
			"Unusually large transaction: $%.2f (>%.2f, median: $%.2f)",
			amount, threshold, batch.Median))
		tx.RaiseAnomalyScore(amount / batch.Median)
	}
}

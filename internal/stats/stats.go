// Package stats computes the batch aggregates the anomaly detection passes
// read. Aggregates are computed once per run, before any flagging, so that
// detection never observes its own effects: flagging a transaction cannot
// shift the mean another transaction is judged against.
package stats

import (
	"math"
	"sort"

	"github.com/kcbailey111/finance-agent/internal/models"
)

// CategoryStats holds per-category amount aggregates.
type CategoryStats struct {
	Count int
	Mean  float64
	Std   float64
}

// Batch holds the whole-batch amount aggregates plus per-category breakdowns.
// Only transactions with a valid amount participate; rows that failed amount
// parsing are excluded from every aggregate.
type Batch struct {
	Count  int
	Mean   float64
	Std    float64
	Median float64
	Q1     float64
	Q3     float64
	IQR    float64

	PerCategory map[string]CategoryStats
}

// Compute derives batch statistics from the transactions' amounts. It is a
// pure function: it never mutates its input and depends only on the amounts
// and categories present.
func Compute(transactions []models.Transaction) Batch {
	amounts := make([]float64, 0, len(transactions))
	byCategory := make(map[string][]float64)

	for i := range transactions {
		tx := &transactions[i]
		if !tx.AmountValid {
			continue
		}
		amount := tx.AmountFloat()
		amounts = append(amounts, amount)
		byCategory[tx.Category] = append(byCategory[tx.Category], amount)
	}

	batch := Batch{
		Count:       len(amounts),
		PerCategory: make(map[string]CategoryStats, len(byCategory)),
	}
	if len(amounts) == 0 {
		return batch
	}

	sort.Float64s(amounts)
	batch.Mean = mean(amounts)
	batch.Std = sampleStd(amounts, batch.Mean)
	batch.Median = quantileSorted(amounts, 0.5)
	batch.Q1 = quantileSorted(amounts, 0.25)
	batch.Q3 = quantileSorted(amounts, 0.75)
	batch.IQR = batch.Q3 - batch.Q1

	for category, values := range byCategory {
		m := mean(values)
		batch.PerCategory[category] = CategoryStats{
			Count: len(values),
			Mean:  m,
			Std:   sampleStd(values, m),
		}
	}

	return batch
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the sample standard deviation (n-1 denominator). A single
// value has no spread to estimate and yields 0.
func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSquares float64
	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

// quantileSorted computes the q-quantile of an ascending-sorted slice using
// linear interpolation between closest ranks. This matches the convention
// most dataframe libraries default to, so thresholds line up with values
// analysts compute by hand.
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	h := q * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Quantile computes the q-quantile of arbitrary values. The input is copied
// before sorting.
func Quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

// Median is the 0.5 quantile of arbitrary values.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

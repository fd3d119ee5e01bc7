package anomaly

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/textutils"
)

// Anomaly type labels used in summaries and reports.
const (
	TypeStatisticalOutlier = "Statistical Outlier"
	TypeIQROutlier         = "IQR Outlier"
	TypeCategoryOutlier    = "Category Outlier"
	TypeUnknownMerchant    = "Unknown Merchant"
	TypeLargeTransaction   = "Large Transaction"
)

// typeOrder fixes the display order of the by-type breakdown, matching the
// order the detection passes run in.
var typeOrder = []string{
	TypeStatisticalOutlier,
	TypeIQROutlier,
	TypeCategoryOutlier,
	TypeUnknownMerchant,
	TypeLargeTransaction,
}

// Summary aggregates a batch's anomaly results.
type Summary struct {
	TotalTransactions int
	TotalAnomalies    int
	// AnomalyRate is a percentage in [0, 100].
	AnomalyRate float64
	ByType      map[string]int
	// Top holds the highest-scoring anomalies, at most TopN of them,
	// in descending score order with input order breaking ties.
	Top []models.Transaction
}

// Summarize builds an anomaly summary over already-detected transactions.
// Each anomalous transaction counts toward exactly one type: the first type
// matching its joined reason text, checked in pass order.
func Summarize(transactions []models.Transaction, topN int) Summary {
	if topN < 1 {
		topN = 5
	}

	summary := Summary{
		TotalTransactions: len(transactions),
		ByType:            make(map[string]int),
	}

	var anomalies []models.Transaction
	for i := range transactions {
		if transactions[i].IsAnomaly {
			anomalies = append(anomalies, transactions[i])
		}
	}

	summary.TotalAnomalies = len(anomalies)
	if len(transactions) > 0 {
		summary.AnomalyRate = float64(len(anomalies)) / float64(len(transactions)) * 100
	}

	for i := range anomalies {
		if typeName := classifyReason(joinReasons(&anomalies[i])); typeName != "" {
			summary.ByType[typeName]++
		}
	}

	// Stable sort: ties keep input order, so output is deterministic.
	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].AnomalyScore > anomalies[j].AnomalyScore
	})
	if len(anomalies) > topN {
		anomalies = anomalies[:topN]
	}
	summary.Top = anomalies

	return summary
}

// classifyReason assigns an anomaly to one reporting type by scanning its
// joined reason text in pass order.
func classifyReason(reason string) string {
	switch {
	case strings.Contains(reason, "Statistical outlier") || strings.Contains(reason, "Z-score"):
		return TypeStatisticalOutlier
	case strings.Contains(reason, "IQR outlier"):
		return TypeIQROutlier
	case strings.Contains(reason, "Category outlier"):
		return TypeCategoryOutlier
	case strings.Contains(reason, "Unknown/suspicious merchant"):
		return TypeUnknownMerchant
	case strings.Contains(reason, "Unusually large"):
		return TypeLargeTransaction
	}
	return ""
}

func joinReasons(tx *models.Transaction) string {
	return strings.Join(tx.AnomalyReasons, "; ")
}

// RenderReport formats the fixed-layout text report.
func RenderReport(transactions []models.Transaction, topN int) string {
	summary := Summarize(transactions, topN)
	banner := strings.Repeat("=", 60)
	divider := strings.Repeat("-", 60)

	lines := []string{
		banner,
		"ANOMALY DETECTION REPORT",
		banner,
		"",
		fmt.Sprintf("Total Transactions Analyzed: %d", summary.TotalTransactions),
		fmt.Sprintf("Anomalies Detected: %d", summary.TotalAnomalies),
		fmt.Sprintf("Anomaly Rate: %.1f%%", summary.AnomalyRate),
		"",
	}

	if len(summary.ByType) > 0 {
		lines = append(lines, "ANOMALIES BY TYPE:", divider)
		for _, typeName := range typeOrder {
			if count, ok := summary.ByType[typeName]; ok {
				lines = append(lines, fmt.Sprintf("  %-30s %3d", typeName, count))
			}
		}
		lines = append(lines, "")
	}

	if len(summary.Top) > 0 {
		lines = append(lines, "TOP ANOMALIES (by severity):", divider)
		for i := range summary.Top {
			tx := &summary.Top[i]
			lines = append(lines,
				fmt.Sprintf("\n%d. %s - $%s", i+1, displayMerchant(tx), textutils.CommaSeparated(tx.AmountFloat())),
				fmt.Sprintf("   Date: %s", displayDate(tx)),
				fmt.Sprintf("   Category: %s", displayOr(tx.Category, "N/A")),
				fmt.Sprintf("   Score: %.2f", tx.AnomalyScore),
				fmt.Sprintf("   Reason: %s", displayOr(joinReasons(tx), "N/A")),
			)
		}
	}

	if summary.TotalAnomalies == 0 {
		lines = append(lines, "No anomalies detected. All transactions appear normal.")
	}

	lines = append(lines, "", banner)
	return strings.Join(lines, "\n")
}

func displayMerchant(tx *models.Transaction) string {
	return displayOr(tx.Merchant, "N/A")
}

func displayDate(tx *models.Transaction) string {
	if tx.DateValid {
		return tx.Date.Format("2006-01-02")
	}
	return displayOr(tx.RawDate, "N/A")
}

func displayOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

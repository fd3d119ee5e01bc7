package recurring

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kcbailey111/finance-agent/internal/dateutils"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/stats"
	"github.com/kcbailey111/finance-agent/internal/textutils"
)

// Bill is one row of the projected bill calendar.
type Bill struct {
	Merchant      string
	TypicalAmount decimal.Decimal
	TypicalDay    int
	LastSeen      time.Time
	NextDue       time.Time
}

// Calendar projects expected next due dates from already-marked recurring
// transactions. Each recurring merchant yields one bill: its median amount,
// its median charge day-of-month, the last charge seen, and a next due date
// 30 days after it. Bills are sorted by next due date ascending, then by
// typical amount descending so the biggest upcoming charges surface first.
func (d *Detector) Calendar(transactions []models.Transaction) []Bill {
	groups := make(map[string][]int)
	for i := range transactions {
		tx := &transactions[i]
		if !tx.IsRecurring || !tx.AmountValid || !tx.DateValid {
			continue
		}
		key := textutils.NormalizeMerchant(tx.PartyText())
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], i)
	}

	bills := make([]Bill, 0, len(groups))
	for _, merchant := range sortedKeys(groups) {
		indices := groups[merchant]

		amounts := make([]decimal.Decimal, len(indices))
		days := make([]float64, len(indices))
		var lastSeen time.Time
		for i, idx := range indices {
			tx := &transactions[idx]
			amounts[i] = tx.Amount
			days[i] = float64(tx.Date.Day())
			if day := dateutils.Truncate(tx.Date); day.After(lastSeen) {
				lastSeen = day
			}
		}

		bills = append(bills, Bill{
			Merchant:      merchant,
			TypicalAmount: medianDecimal(amounts).Round(2),
			TypicalDay:    int(stats.Median(days)),
			LastSeen:      lastSeen,
			NextDue:       lastSeen.AddDate(0, 0, models.NextDueIntervalDays),
		})
	}

	sort.SliceStable(bills, func(i, j int) bool {
		if !bills[i].NextDue.Equal(bills[j].NextDue) {
			return bills[i].NextDue.Before(bills[j].NextDue)
		}
		return bills[i].TypicalAmount.GreaterThan(bills[j].TypicalAmount)
	})

	return bills
}

// RenderCalendar formats the bill calendar as an aligned text table.
func RenderCalendar(bills []Bill) string {
	if len(bills) == 0 {
		return "No recurring charges detected.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-30s %12s %6s %12s %12s\n",
		"MERCHANT", "AMOUNT", "DAY", "LAST SEEN", "NEXT DUE"))
	b.WriteString(strings.Repeat("-", 76) + "\n")
	for i := range bills {
		bill := &bills[i]
		b.WriteString(fmt.Sprintf("%-30s %12s %6d %12s %12s\n",
			bill.Merchant,
			"$"+bill.TypicalAmount.StringFixed(2),
			bill.TypicalDay,
			dateutils.ToISODate(bill.LastSeen),
			dateutils.ToISODate(bill.NextDue)))
	}
	return b.String()
}

package closing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// arithmeticTolerance absorbs floating point slack in extracted sums
	arithmeticTolerance = decimal.NewFromInt(5)
	// largeDiscrepancy flags a difference worth a second look regardless of other checks
	largeDiscrepancy = decimal.NewFromInt(1000)
)

const (
	warnInvalidDate      = "The extracted date is not valid."
	warnFutureDate       = "The report date is in the future."
	warnMissingCash      = "Alert: physical cash in the count is 0. Is that correct?"
	warnLargeDiscrepancy = "Alert: the difference between system and count is very large (> 1000)."
)

// RealAccounted is the money the count accounts for: every real bucket plus
// expenses, which leave the drawer as cash but are still part of the takings.
func RealAccounted(r *DailyReport) decimal.Decimal {
	return r.RealBreakdown.Sum().Add(r.Expenses)
}

// Validate cross-checks the stated totals against their breakdowns and returns
// the warnings in detection order. Totals and difference are read as stated.
func Validate(r *DailyReport, today time.Time) []string {
	warnings := make([]string, 0)

	if w := checkDate(r.Date, today); w != "" {
		warnings = append(warnings, w)
	}

	if sum := r.SystemBreakdown.Sum(); exceeds(sum.Sub(r.SystemTotal), arithmeticTolerance) {
		warnings = append(warnings, fmt.Sprintf(
			"System inconsistency: the breakdown adds up to %s but the system total is %s.",
			sum, r.SystemTotal))
	}

	if sum := RealAccounted(r); exceeds(sum.Sub(r.RealTotal), arithmeticTolerance) {
		warnings = append(warnings, fmt.Sprintf(
			"Check the count: cash, electronic, delivery, current account, other and expenses add up to %s, which differs from the real total %s.",
			sum, r.RealTotal))
	}

	if r.RealBreakdown.Cash.IsZero() && r.RealTotal.IsPositive() {
		warnings = append(warnings, warnMissingCash)
	}

	if exceeds(r.Difference, largeDiscrepancy) {
		warnings = append(warnings, warnLargeDiscrepancy)
	}

	if fields := negativeFields(r); len(fields) > 0 {
		warnings = append(warnings, "Negative amounts found: "+strings.Join(fields, ", ")+".")
	}

	return warnings
}

func exceeds(d, limit decimal.Decimal) bool {
	return d.Abs().GreaterThan(limit)
}

func checkDate(date string, today time.Time) string {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return warnInvalidDate
	}
	y, m, day := today.UTC().Date()
	if d.After(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		return warnFutureDate
	}
	return ""
}

func negativeFields(r *DailyReport) []string {
	var fields []string
	add := func(name string, v decimal.Decimal) {
		if v.IsNegative() {
			fields = append(fields, name)
		}
	}
	for _, side := range []struct {
		label string
		b     MoneyBreakdown
	}{{"system", r.SystemBreakdown}, {"real", r.RealBreakdown}} {
		add(side.label+" cash", side.b.Cash)
		add(side.label+" electronic", side.b.Electronic)
		add(side.label+" delivery apps", side.b.DeliveryApps)
		add(side.label+" current account", side.b.CurrentAccount)
		add(side.label+" other", side.b.Other)
	}
	add("expenses", r.Expenses)
	return fields
}

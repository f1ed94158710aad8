package closing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// smallChange is the rounding band tolerated in manual counts
var smallChange = decimal.NewFromInt(50)

// ErrWarningIndex is returned when dismissing a warning that does not exist
var ErrWarningIndex = errors.New("warning index out of range")

// Classify derives the status from the difference and the open warnings
func Classify(difference decimal.Decimal, warnings []string) Status {
	switch {
	case len(warnings) > 0:
		return StatusReviewRequired
	case difference.LessThan(smallChange.Neg()):
		return StatusShortage
	case difference.GreaterThan(smallChange):
		return StatusSurplus
	default:
		return StatusBalanced
	}
}

// Recalculate re-derives totals, difference and status from the breakdowns,
// expenses and current warnings. Calling it again yields the same report.
func (r *DailyReport) Recalculate() {
	r.SystemTotal = r.SystemBreakdown.Sum()
	r.RealTotal = RealAccounted(r)
	r.Difference = r.RealTotal.Sub(r.SystemTotal)
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	r.Status = Classify(r.Difference, r.Warnings)
}

// DismissWarning drops the warning at index i and recalculates
func (r *DailyReport) DismissWarning(i int) error {
	if i < 0 || i >= len(r.Warnings) {
		return fmt.Errorf("%w: %d", ErrWarningIndex, i)
	}
	r.Warnings = append(r.Warnings[:i:i], r.Warnings[i+1:]...)
	r.Recalculate()
	return nil
}

// Review turns a raw extraction into a draft: normalized fields, warnings
// against the stated figures and a status from the stated difference.
func Review(raw *RawExtraction, id string, now time.Time) *DailyReport {
	r := Normalize(raw, id)
	r.Warnings = Validate(r, now)
	r.Status = Classify(r.Difference, r.Warnings)
	return r
}

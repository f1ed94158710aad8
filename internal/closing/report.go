package closing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for report dates
const DateLayout = "2006-01-02"

// Status is the reconciliation outcome of a closing
type Status string

const (
	StatusBalanced       Status = "BALANCED"
	StatusShortage       Status = "SHORTAGE"
	StatusSurplus        Status = "SURPLUS"
	StatusReviewRequired Status = "REVIEW_REQUIRED"
)

// MoneyBreakdown splits a total across payment channels. Amounts encode to
// JSON as decimal strings and decode from strings or numbers.
type MoneyBreakdown struct {
	Cash           decimal.Decimal `json:"cash"`
	Electronic     decimal.Decimal `json:"electronic"`     // cards, QR, transfers
	DeliveryApps   decimal.Decimal `json:"deliveryApps"`   // delivery platform sales
	CurrentAccount decimal.Decimal `json:"currentAccount"` // store credit sales
	Other          decimal.Decimal `json:"other"`
}

// Sum adds all five buckets
func (b MoneyBreakdown) Sum() decimal.Decimal {
	return b.Cash.Add(b.Electronic).Add(b.DeliveryApps).Add(b.CurrentAccount).Add(b.Other)
}

// DailyReport is one reconciliation record for a shift closing
type DailyReport struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	ShiftNumber string `json:"shiftNumber"`

	// What the point of sale claims was sold
	SystemTotal     decimal.Decimal `json:"systemTotal"`
	SystemBreakdown MoneyBreakdown  `json:"systemBreakdown"`

	// What was physically counted
	RealTotal     decimal.Decimal `json:"realTotal"`
	RealBreakdown MoneyBreakdown  `json:"realBreakdown"`

	Expenses decimal.Decimal `json:"expenses"` // paid out of the drawer during the shift

	Difference decimal.Decimal `json:"difference"` // RealTotal - SystemTotal
	Status     Status          `json:"status"`
	Warnings   []string        `json:"warnings"`
	Notes      string          `json:"notes,omitempty"`

	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the report
func (r *DailyReport) Clone() *DailyReport {
	c := *r
	c.Warnings = append(make([]string, 0, len(r.Warnings)), r.Warnings...)
	return &c
}

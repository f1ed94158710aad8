package closing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawBreakdown is a breakdown as returned by an extractor, any bucket may be missing
type RawBreakdown struct {
	Cash           decimal.NullDecimal `json:"cash"`
	Electronic     decimal.NullDecimal `json:"electronic"`
	DeliveryApps   decimal.NullDecimal `json:"deliveryApps"`
	CurrentAccount decimal.NullDecimal `json:"currentAccount"`
	Other          decimal.NullDecimal `json:"other"`
}

// RawExtraction is the untrusted payload produced by an extractor.
// Nothing in it is defaulted; Normalize turns it into a DailyReport.
type RawExtraction struct {
	Date            *string             `json:"date"`
	ShiftNumber     *string             `json:"shiftNumber"`
	SystemTotal     decimal.NullDecimal `json:"systemTotal"`
	SystemBreakdown *RawBreakdown       `json:"systemBreakdown"`
	RealTotal       decimal.NullDecimal `json:"realTotal"`
	RealBreakdown   *RawBreakdown       `json:"realBreakdown"`
	Expenses        decimal.NullDecimal `json:"expenses"`
	Difference      decimal.NullDecimal `json:"difference"`
	Notes           *string             `json:"notes"`
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	if v := strings.TrimSpace(*s); v != "" {
		return v
	}
	return def
}

func (b *RawBreakdown) normalize() MoneyBreakdown {
	if b == nil {
		return MoneyBreakdown{}
	}
	return MoneyBreakdown{
		Cash:           orZero(b.Cash),
		Electronic:     orZero(b.Electronic),
		DeliveryApps:   orZero(b.DeliveryApps),
		CurrentAccount: orZero(b.CurrentAccount),
		Other:          orZero(b.Other),
	}
}

// Normalize defaults every missing field and returns a report with the given id.
// Stated totals are kept as extracted. A missing difference is derived from them.
// Status and warnings are left empty; see Review.
func Normalize(raw *RawExtraction, id string) *DailyReport {
	if raw == nil {
		raw = &RawExtraction{}
	}
	r := &DailyReport{
		ID:              id,
		Date:            orDefault(raw.Date, ""),
		ShiftNumber:     orDefault(raw.ShiftNumber, "N/A"),
		SystemTotal:     orZero(raw.SystemTotal),
		SystemBreakdown: raw.SystemBreakdown.normalize(),
		RealTotal:       orZero(raw.RealTotal),
		RealBreakdown:   raw.RealBreakdown.normalize(),
		Expenses:        orZero(raw.Expenses),
		Notes:           orDefault(raw.Notes, ""),
		Warnings:        []string{},
	}
	if raw.Difference.Valid {
		r.Difference = raw.Difference.Decimal
	} else {
		r.Difference = r.RealTotal.Sub(r.SystemTotal)
	}
	return r
}

package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zombor/cashclose/internal/closing"
)

func demoReport(id, date, shift string, system, counted closing.MoneyBreakdown, expenses int64) *closing.DailyReport {
	return &closing.DailyReport{
		ID:              id,
		Date:            date,
		ShiftNumber:     shift,
		SystemBreakdown: system,
		RealBreakdown:   counted,
		Expenses:        decimal.NewFromInt(expenses),
		Warnings:        []string{},
	}
}

func amounts(cash, electronic, delivery int64) closing.MoneyBreakdown {
	return closing.MoneyBreakdown{
		Cash:         decimal.NewFromInt(cash),
		Electronic:   decimal.NewFromInt(electronic),
		DeliveryApps: decimal.NewFromInt(delivery),
	}
}

// demoReports are three consecutive shifts: one balanced once expenses are
// counted, one 500 short and one 200 over.
func demoReports() []*closing.DailyReport {
	return []*closing.DailyReport{
		demoReport("demo-1", "2023-10-25", "001", amounts(30000, 15000, 5000), amounts(29500, 15000, 5000), 500),
		demoReport("demo-2", "2023-10-26", "002", amounts(40000, 15000, 7000), amounts(39500, 15000, 7000), 0),
		demoReport("demo-3", "2023-10-27", "003", amounts(25000, 20000, 10000), amounts(25200, 20000, 10000), 0),
	}
}

// LoadDemoData saves the demo closings, replacing earlier copies of them
func (s *Service) LoadDemoData(ctx context.Context) ([]*SaveResult, error) {
	reports := demoReports()
	results := make([]*SaveResult, 0, len(reports))
	for _, r := range reports {
		res, err := s.SaveReport(ctx, r)
		if err != nil {
			return results, fmt.Errorf("saving demo report %s: %w", r.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

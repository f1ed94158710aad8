package closing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ChannelAmount is the counted money for one payment channel
type ChannelAmount struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// TimelinePoint is one closing on the dashboard chart
type TimelinePoint struct {
	Date        string          `json:"date"`
	ShiftNumber string          `json:"shiftNumber"`
	SystemTotal decimal.Decimal `json:"systemTotal"`
	RealTotal   decimal.Decimal `json:"realTotal"`
	Expenses    decimal.Decimal `json:"expenses"`
	Difference  decimal.Decimal `json:"difference"`
}

// DashboardMetrics aggregates a set of validated reports
type DashboardMetrics struct {
	ReportCount     int             `json:"reportCount"`
	TotalSales      decimal.Decimal `json:"totalSales"`
	TotalCash       decimal.Decimal `json:"totalCash"`
	TotalElectronic decimal.Decimal `json:"totalElectronic"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	NetBalance      decimal.Decimal `json:"netBalance"`
	StatusCounts    map[Status]int  `json:"statusCounts"`
	ChannelMix      []ChannelAmount `json:"channelMix"`
	Timeline        []TimelinePoint `json:"timeline"`
}

// Summarize computes the dashboard figures. Sales come from the system side,
// cash and electronic from the count. Channels with nothing counted are left
// out of the mix and the timeline is ordered by report date.
func Summarize(reports []*DailyReport) DashboardMetrics {
	m := DashboardMetrics{
		ReportCount:  len(reports),
		StatusCounts: make(map[Status]int),
		ChannelMix:   []ChannelAmount{},
		Timeline:     make([]TimelinePoint, 0, len(reports)),
	}

	var delivery, currentAccount decimal.Decimal
	for _, r := range reports {
		m.TotalSales = m.TotalSales.Add(r.SystemTotal)
		m.TotalCash = m.TotalCash.Add(r.RealBreakdown.Cash)
		m.TotalElectronic = m.TotalElectronic.Add(r.RealBreakdown.Electronic)
		m.TotalExpenses = m.TotalExpenses.Add(r.Expenses)
		m.NetBalance = m.NetBalance.Add(r.Difference)
		m.StatusCounts[r.Status]++
		delivery = delivery.Add(r.RealBreakdown.DeliveryApps)
		currentAccount = currentAccount.Add(r.RealBreakdown.CurrentAccount)

		m.Timeline = append(m.Timeline, TimelinePoint{
			Date:        r.Date,
			ShiftNumber: r.ShiftNumber,
			SystemTotal: r.SystemTotal,
			RealTotal:   r.RealTotal,
			Expenses:    r.Expenses,
			Difference:  r.Difference,
		})
	}

	for _, c := range []ChannelAmount{
		{Name: "cash", Value: m.TotalCash},
		{Name: "electronic", Value: m.TotalElectronic},
		{Name: "deliveryApps", Value: delivery},
		{Name: "currentAccount", Value: currentAccount},
	} {
		if c.Value.IsPositive() {
			m.ChannelMix = append(m.ChannelMix, c)
		}
	}

	sort.SliceStable(m.Timeline, func(i, j int) bool {
		return m.Timeline[i].Date < m.Timeline[j].Date
	})

	return m
}

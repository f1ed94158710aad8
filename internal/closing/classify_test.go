package closing

import (
	"errors"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classify", func() {
	DescribeTable("status from difference and warnings",
		func(difference int64, warnings []string, expected Status) {
			Expect(Classify(d(difference), warnings)).To(Equal(expected))
		},
		Entry("balanced at zero", int64(0), []string{}, StatusBalanced),
		Entry("balanced at the upper edge", int64(50), []string{}, StatusBalanced),
		Entry("balanced at the lower edge", int64(-50), []string{}, StatusBalanced),
		Entry("shortage below the band", int64(-51), []string{}, StatusShortage),
		Entry("surplus above the band", int64(51), []string{}, StatusSurplus),
		Entry("warnings override a shortage", int64(-500), []string{"x"}, StatusReviewRequired),
		Entry("warnings override balanced", int64(0), []string{"x"}, StatusReviewRequired),
	)
})

var _ = Describe("Recalculate", func() {
	var report *DailyReport

	BeforeEach(func() {
		report = balancedReport()
		report.SystemTotal = d(1)
		report.RealTotal = d(2)
		report.Difference = d(3)
	})

	JustBeforeEach(func() {
		report.Recalculate()
	})

	It("should derive the system total from the breakdown", func() {
		Expect(report.SystemTotal.Equal(d(50000))).To(BeTrue())
	})

	It("should derive the real total from the count and expenses", func() {
		Expect(report.RealTotal.Equal(d(50000))).To(BeTrue())
	})

	It("should derive the difference", func() {
		Expect(report.Difference.IsZero()).To(BeTrue())
	})

	It("should classify the report as balanced", func() {
		Expect(report.Status).To(Equal(StatusBalanced))
	})

	When("other holds money", func() {
		BeforeEach(func() {
			report.RealBreakdown.Other = d(200)
		})

		It("should include it in the real total", func() {
			Expect(report.RealTotal.Equal(d(50200))).To(BeTrue())
			Expect(report.Status).To(Equal(StatusSurplus))
		})
	})

	When("warnings are pending", func() {
		BeforeEach(func() {
			report.Warnings = []string{"check"}
		})

		It("should require review", func() {
			Expect(report.Status).To(Equal(StatusReviewRequired))
		})
	})

	When("warnings is nil", func() {
		BeforeEach(func() {
			report.Warnings = nil
		})

		It("should normalise it to an empty list", func() {
			Expect(report.Warnings).NotTo(BeNil())
		})
	})
})

var _ = Describe("DismissWarning", func() {
	var report *DailyReport

	BeforeEach(func() {
		report = balancedReport()
		report.RealBreakdown.Cash = d(29000)
		report.Recalculate()
		report.Warnings = []string{"first", "second"}
		report.Recalculate()
	})

	It("should remove the warning at the index", func() {
		Expect(report.DismissWarning(0)).To(Succeed())
		Expect(report.Warnings).To(Equal([]string{"second"}))
		Expect(report.Status).To(Equal(StatusReviewRequired))
	})

	It("should reclassify once every warning is gone", func() {
		Expect(report.DismissWarning(1)).To(Succeed())
		Expect(report.DismissWarning(0)).To(Succeed())
		Expect(report.Status).To(Equal(StatusShortage))
	})

	It("should not alias the previous warnings slice", func() {
		before := report.Warnings
		Expect(report.DismissWarning(0)).To(Succeed())
		Expect(before).To(Equal([]string{"first", "second"}))
	})

	It("should reject an index out of range", func() {
		err := report.DismissWarning(2)
		Expect(errors.Is(err, ErrWarningIndex)).To(BeTrue())
		Expect(report.Warnings).To(HaveLen(2))
	})

	It("should reject a negative index", func() {
		Expect(errors.Is(report.DismissWarning(-1), ErrWarningIndex)).To(BeTrue())
	})
})

var _ = Describe("Review", func() {
	var (
		raw    *RawExtraction
		now    time.Time
		report *DailyReport
	)

	str := func(s string) *string { return &s }

	BeforeEach(func() {
		now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		raw = &RawExtraction{
			Date:        str("2023-10-26"),
			ShiftNumber: str("002"),
			SystemBreakdown: &RawBreakdown{
				Cash:         nd(40000),
				Electronic:   nd(15000),
				DeliveryApps: nd(7000),
			},
			SystemTotal: nd(62000),
			RealBreakdown: &RawBreakdown{
				Cash:         nd(39500),
				Electronic:   nd(15000),
				DeliveryApps: nd(7000),
			},
			RealTotal: nd(61500),
			Expenses:  nd(0),
		}
	})

	JustBeforeEach(func() {
		report = Review(raw, "id-2", now)
	})

	When("the sheet is consistent with a 500 shortage", func() {
		It("should not warn", func() {
			Expect(report.Warnings).To(BeEmpty())
		})

		It("should classify it as a shortage", func() {
			Expect(report.Difference.Equal(d(-500))).To(BeTrue())
			Expect(report.Status).To(Equal(StatusShortage))
		})
	})

	When("the stated difference is -1500", func() {
		BeforeEach(func() {
			raw.Difference = nd(-1500)
		})

		It("should warn and require review", func() {
			Expect(report.Warnings).To(ContainElement(warnLargeDiscrepancy))
			Expect(report.Status).To(Equal(StatusReviewRequired))
		})
	})

	When("real cash is missing", func() {
		BeforeEach(func() {
			raw.RealBreakdown.Cash = nd(0)
			raw.RealTotal = nd(500)
			raw.Difference = nd(-500)
		})

		It("should include the missing cash warning", func() {
			Expect(report.Warnings).To(ContainElement(warnMissingCash))
		})

		It("should reach a shortage once every warning is dismissed", func() {
			for len(report.Warnings) > 0 {
				Expect(report.DismissWarning(0)).To(Succeed())
			}
			Expect(report.Status).To(Equal(StatusShortage))
		})
	})

	It("should keep the stated totals", func() {
		raw.SystemTotal = nd(70000)
		r := Review(raw, "id-3", now)
		Expect(r.SystemTotal.Equal(d(70000))).To(BeTrue())
		Expect(r.Status).To(Equal(StatusReviewRequired))
	})
})

var _ = Describe("properties", func() {
	breakdownGen := gen.SliceOfN(5, gen.Int64Range(0, 10000000))

	toBreakdown := func(v []int64) MoneyBreakdown {
		return MoneyBreakdown{Cash: d(v[0]), Electronic: d(v[1]), DeliveryApps: d(v[2]), CurrentAccount: d(v[3]), Other: d(v[4])}
	}

	check := func(properties *gopter.Properties) {
		result := properties.Run(gopter.NewFormatedReporter(false, 80, GinkgoWriter))
		Expect(result).To(BeTrue())
	}

	It("should make recalculation idempotent", func() {
		properties := gopter.NewProperties(gopter.DefaultTestParameters())
		properties.Property("recalculating twice changes nothing", prop.ForAll(
			func(system, counted []int64, expenses int64, warn bool) bool {
				r := &DailyReport{SystemBreakdown: toBreakdown(system), RealBreakdown: toBreakdown(counted), Expenses: d(expenses)}
				if warn {
					r.Warnings = []string{"pending"}
				}
				r.Recalculate()
				once := r.Clone()
				r.Recalculate()
				return r.SystemTotal.Equal(once.SystemTotal) &&
					r.RealTotal.Equal(once.RealTotal) &&
					r.Difference.Equal(once.Difference) &&
					r.Status == once.Status
			},
			breakdownGen, breakdownGen, gen.Int64Range(0, 1000000), gen.Bool(),
		))
		check(properties)
	})

	It("should not emit arithmetic warnings for exact sums", func() {
		properties := gopter.NewProperties(gopter.DefaultTestParameters())
		properties.Property("consistent reports pass the arithmetic checks", prop.ForAll(
			func(system, counted []int64, expenses int64) bool {
				r := &DailyReport{Date: "2023-10-25", SystemBreakdown: toBreakdown(system), RealBreakdown: toBreakdown(counted), Expenses: d(expenses)}
				r.Recalculate()
				for _, w := range Validate(r, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
					if w != warnMissingCash && w != warnLargeDiscrepancy {
						return false
					}
				}
				return true
			},
			breakdownGen, breakdownGen, gen.Int64Range(0, 1000000),
		))
		check(properties)
	})
})

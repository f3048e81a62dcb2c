package application_test

import (
	"math"

	"github.com/bp848/mqdriven-sub004/internal/application"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DeriveAmount", func() {
	It("should read a plain numeric amount", func() {
		v, ok := application.DeriveAmount(application.FormData{"amount": 12500.0})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(12500.0))
	})

	It("should honor the field fallback order", func() {
		v, ok := application.DeriveAmount(application.FormData{
			"totalAmount":     300.0,
			"requestedAmount": 999.0,
		})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(300.0))

		v, ok = application.DeriveAmount(application.FormData{
			"amount":      100.0,
			"totalAmount": 300.0,
		})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(100.0))
	})

	It("should parse string amounts with thousands separators", func() {
		v, ok := application.DeriveAmount(application.FormData{"amount": "1,250,000"})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1250000.0))
	})

	It("should fall through to invoice totals", func() {
		v, ok := application.DeriveAmount(application.FormData{
			"invoice": map[string]any{
				"totalNet":   900.0,
				"totalGross": 990.0,
			},
		})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(990.0))
	})

	It("should sum detail lines when no direct field parses", func() {
		v, ok := application.DeriveAmount(application.FormData{
			"details": []any{
				map[string]any{"amount": 100.0, "note": "taxi"},
				map[string]any{"amount": 250.0},
				map[string]any{"note": "no amount"},
			},
		})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(350.0))
	})

	It("should sum invoice lines as the last resort", func() {
		v, ok := application.DeriveAmount(application.FormData{
			"invoice": map[string]any{
				"lines": []any{
					map[string]any{"amount": "1,000"},
					map[string]any{"amount": 500.0},
				},
			},
		})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1500.0))
	})

	It("should prefer a direct field over detail lines", func() {
		v, ok := application.DeriveAmount(application.FormData{
			"amount": 42.0,
			"details": []any{
				map[string]any{"amount": 9000.0},
			},
		})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(42.0))
	})

	It("should report no amount for empty or unparsable payloads", func() {
		_, ok := application.DeriveAmount(nil)
		Expect(ok).To(BeFalse())

		_, ok = application.DeriveAmount(application.FormData{})
		Expect(ok).To(BeFalse())

		_, ok = application.DeriveAmount(application.FormData{"amount": "not a number"})
		Expect(ok).To(BeFalse())

		_, ok = application.DeriveAmount(application.FormData{"amount": math.NaN()})
		Expect(ok).To(BeFalse())

		_, ok = application.DeriveAmount(application.FormData{"details": []any{}})
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("SumAmounts", func() {
	It("should total derivable amounts and skip records without one", func() {
		apps := []*application.Application{
			{FormData: application.FormData{"amount": 100.0}},
			{FormData: application.FormData{}},
			{FormData: application.FormData{"totalAmount": "2,400"}},
		}
		Expect(application.SumAmounts(apps)).To(Equal(2500.0))
	})
})

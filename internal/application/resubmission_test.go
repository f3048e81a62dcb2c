package application_test

import (
	"time"

	"github.com/bp848/mqdriven-sub004/internal/application"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resubmission links", func() {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	Describe("BuildResubmissionMeta", func() {
		It("should link a rejected source as the direct parent", func() {
			source := &application.Application{
				ID:     17,
				Status: application.StatusRejected,
			}

			meta := application.BuildResubmissionMeta(source, now)
			Expect(meta).NotTo(BeNil())
			Expect(meta.ResubmittedFromID).To(Equal(int64(17)))
			Expect(meta.ResubmittedAt).To(Equal(now))
		})

		It("should pass a draft's existing ancestor through unchanged", func() {
			source := &application.Application{
				ID:     30,
				Status: application.StatusDraft,
				FormData: application.FormData{
					"meta": map[string]any{"resubmittedFromId": float64(17)},
				},
			}

			meta := application.BuildResubmissionMeta(source, now)
			Expect(meta).NotTo(BeNil())
			Expect(meta.ResubmittedFromID).To(Equal(int64(17)))
		})

		It("should return nil when there is nothing to link", func() {
			source := &application.Application{
				ID:       30,
				Status:   application.StatusDraft,
				FormData: application.FormData{},
			}

			Expect(application.BuildResubmissionMeta(source, now)).To(BeNil())
			Expect(application.BuildResubmissionMeta(nil, now)).To(BeNil())
		})
	})

	Describe("AttachResubmissionMeta", func() {
		It("should merge the link into form data without touching other keys", func() {
			formData := application.FormData{
				"amount": 500.0,
				"meta":   map[string]any{"ocrConfidence": 0.92},
			}

			result := application.AttachResubmissionMeta(formData, &application.ResubmissionMeta{
				ResubmittedFromID: 17,
				ResubmittedAt:     now,
			})

			Expect(result["amount"]).To(Equal(500.0))
			meta, ok := result["meta"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(meta["ocrConfidence"]).To(Equal(0.92))
			Expect(meta["resubmittedFromId"]).To(Equal(int64(17)))
			Expect(meta["resubmittedAt"]).To(Equal(now.Format(time.RFC3339)))

			// The input map is left untouched.
			original, ok := formData["meta"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(original).NotTo(HaveKey("resubmittedFromId"))
		})

		It("should return form data unchanged for a nil link", func() {
			formData := application.FormData{"amount": 1.0}
			Expect(application.AttachResubmissionMeta(formData, nil)).To(Equal(formData))
		})
	})

	Describe("SummarizeLinks", func() {
		It("should derive parent and child indexes in one pass", func() {
			apps := []*application.Application{
				{ID: 17, FormData: application.FormData{}},
				{ID: 30, FormData: application.FormData{
					"meta": map[string]any{"resubmittedFromId": float64(17)},
				}},
				{ID: 31, FormData: application.FormData{
					"meta": map[string]any{"resubmittedFromId": float64(17)},
				}},
				{ID: 40, FormData: application.FormData{}},
			}

			links := application.SummarizeLinks(apps)

			Expect(links.HasResubmission(17)).To(BeTrue())
			Expect(links.HasResubmission(40)).To(BeFalse())

			parent, ok := links.ParentOf(30)
			Expect(ok).To(BeTrue())
			Expect(parent).To(Equal(int64(17)))

			parent, ok = links.ParentOf(31)
			Expect(ok).To(BeTrue())
			Expect(parent).To(Equal(int64(17)))

			_, ok = links.ParentOf(17)
			Expect(ok).To(BeFalse())
		})
	})
})

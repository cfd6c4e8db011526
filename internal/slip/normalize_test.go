package slip

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("normalizeSlipData", func() {
	var (
		fields map[string]any
		data   *ExtractedSlipData
	)

	JustBeforeEach(func() {
		data = normalizeSlipData(fields)
	})

	When("all fields are present and well typed", func() {
		BeforeEach(func() {
			fields = map[string]any{
				"transactionId":   "TXN123",
				"toAccountNumber": "123-4-56789-0",
				"confidenceScore": 87.5,
				"rawText":         "Transfer complete",
			}
		})

		It("should keep every field", func() {
			Expect(data.TransactionID).To(HaveValue(Equal("TXN123")))
			Expect(data.ToAccountNumber).To(HaveValue(Equal("123-4-56789-0")))
			Expect(data.RawText).To(HaveValue(Equal("Transfer complete")))
		})

		It("should not round the confidence score", func() {
			Expect(data.ConfidenceScore).To(HaveValue(Equal(87.5)))
		})
	})

	When("fields are missing", func() {
		BeforeEach(func() {
			fields = map[string]any{}
		})

		It("should surface every field as null", func() {
			Expect(data.TransactionID).To(BeNil())
			Expect(data.ToAccountNumber).To(BeNil())
			Expect(data.ConfidenceScore).To(BeNil())
			Expect(data.RawText).To(BeNil())
		})
	})

	When("string fields are empty", func() {
		BeforeEach(func() {
			fields = map[string]any{
				"transactionId":   "",
				"toAccountNumber": "",
				"rawText":         "",
			}
		})

		It("should surface them as null, not empty strings", func() {
			Expect(data.TransactionID).To(BeNil())
			Expect(data.ToAccountNumber).To(BeNil())
			Expect(data.RawText).To(BeNil())
		})
	})

	When("the confidence score is a word", func() {
		BeforeEach(func() {
			fields = map[string]any{"confidenceScore": "high"}
		})

		It("should surface it as null", func() {
			Expect(data.ConfidenceScore).To(BeNil())
		})
	})

	When("the confidence score exceeds 100", func() {
		BeforeEach(func() {
			fields = map[string]any{"confidenceScore": 150.0}
		})

		It("clamps it to 100", func() {
			Expect(data.ConfidenceScore).To(HaveValue(Equal(100.0)))
		})
	})

	When("the confidence score is negative", func() {
		BeforeEach(func() {
			fields = map[string]any{"confidenceScore": -5.0}
		})

		It("clamps it to 0", func() {
			Expect(data.ConfidenceScore).To(HaveValue(Equal(0.0)))
		})
	})

	When("a field has an unexpected type", func() {
		BeforeEach(func() {
			fields = map[string]any{"transactionId": 12345.0}
		})

		It("should surface it as null", func() {
			Expect(data.TransactionID).To(BeNil())
		})
	})
})

var _ = Describe("deriveStatus", func() {
	str := func(s string) *string { return &s }

	It("is complete when both key fields are present", func() {
		data := &ExtractedSlipData{TransactionID: str("TXN123"), ToAccountNumber: str("123")}
		Expect(deriveStatus(data)).To(Equal(StatusComplete))
	})

	It("is partial when only the transaction ID is present", func() {
		data := &ExtractedSlipData{TransactionID: str("TXN123")}
		Expect(deriveStatus(data)).To(Equal(StatusPartial))
	})

	It("is partial when only the account number is present", func() {
		data := &ExtractedSlipData{ToAccountNumber: str("123")}
		Expect(deriveStatus(data)).To(Equal(StatusPartial))
	})

	It("is empty when neither is present", func() {
		data := &ExtractedSlipData{}
		Expect(deriveStatus(data)).To(Equal(StatusEmpty))
	})
})

var _ = Describe("estimateCostUSD", func() {
	It("prices input and output tokens at their own rates", func() {
		cost := estimateCostUSD(2000, 500, DefaultRatePerKInput, DefaultRatePerKOutput)
		Expect(cost).To(Equal(0.0006))
	})

	It("rounds to six decimal places", func() {
		cost := estimateCostUSD(1, 1, DefaultRatePerKInput, DefaultRatePerKOutput)
		Expect(cost).To(Equal(0.000001))
	})

	It("is zero when no tokens were used", func() {
		Expect(estimateCostUSD(0, 0, DefaultRatePerKInput, DefaultRatePerKOutput)).To(BeZero())
	})
})

var _ = Describe("estimateImageSizeKB", func() {
	It("approximates kilobytes from the base64 length", func() {
		Expect(estimateImageSizeKB(1368)).To(Equal(1))
	})

	It("rounds down tiny payloads to zero", func() {
		Expect(estimateImageSizeKB(20)).To(Equal(0))
	})

	It("scales with the payload", func() {
		// 200000 chars decode to ~150000 bytes
		Expect(estimateImageSizeKB(200000)).To(Equal(146))
	})
})

var _ = Describe("stripDataURI", func() {
	It("splits a data URI into payload and MIME type", func() {
		payload, mimeType := stripDataURI("data:image/png;base64,AAAA")
		Expect(payload).To(Equal("AAAA"))
		Expect(mimeType).To(Equal("image/png"))
	})

	It("passes plain base64 through unchanged", func() {
		payload, mimeType := stripDataURI("AAAA")
		Expect(payload).To(Equal("AAAA"))
		Expect(mimeType).To(BeEmpty())
	})

	It("handles PDF data URIs", func() {
		payload, mimeType := stripDataURI("data:application/pdf;base64,Zm9v")
		Expect(payload).To(Equal("Zm9v"))
		Expect(mimeType).To(Equal("application/pdf"))
	})

	It("leaves a malformed data URI alone", func() {
		payload, mimeType := stripDataURI("data:image/png")
		Expect(payload).To(Equal("data:image/png"))
		Expect(mimeType).To(BeEmpty())
	})
})

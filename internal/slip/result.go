package slip

// ExtractedSlipData represents the fields extracted from a transfer slip.
// Fields the model could not confidently read are null, never empty strings.
type ExtractedSlipData struct {
	TransactionID   *string  `json:"transactionId"`
	ToAccountNumber *string  `json:"toAccountNumber"`
	ConfidenceScore *float64 `json:"confidenceScore"` // 0-100
	RawText         *string  `json:"rawText"`
}

// TokenUsage summarizes model token consumption for one request
type TokenUsage struct {
	Input            int     `json:"input"`
	Output           int     `json:"output"`
	Total            int     `json:"total"`
	EstimatedCostUSD float64 `json:"estimatedCostUSD"`
}

// Meta carries timing, size and cost telemetry for one request
type Meta struct {
	ProcessTimeMs int64      `json:"processTimeMs"`
	AiTimeMs      int64      `json:"aiTimeMs"`
	ImageSizeKB   int        `json:"imageSizeKB"`
	Model         string     `json:"model"`
	Tokens        TokenUsage `json:"tokens"`
}

// Result represents a completed slip extraction
type Result struct {
	RequestID string             `json:"requestId"`
	Status    string             `json:"status"` // complete, partial or empty
	Data      *ExtractedSlipData `json:"data"`
	AiScore   *float64           `json:"aiScore"`
	Meta      Meta               `json:"meta"`
}

// Extraction statuses
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
	StatusEmpty    = "empty"
	StatusError    = "error"
)

// Error is a failed extraction. It serializes to the error response body
// and implements the error interface so it can travel as a return value.
type Error struct {
	RequestID     string `json:"requestId"`
	Status        string `json:"status"` // always "error"
	Message       string `json:"error"`
	ProcessTimeMs int64  `json:"processTimeMs"`

	HTTPStatus int   `json:"-"`
	Err        error `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

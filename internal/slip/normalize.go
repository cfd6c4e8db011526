package slip

import (
	"math"
	"strings"
)

// normalizeString returns a pointer to fields[key] if it is a non-empty
// JSON string, nil otherwise
func normalizeString(fields map[string]any, key string) *string {
	if v, ok := fields[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

// normalizeConfidence clamps a numeric confidenceScore into [0,100].
// Non-numeric values (models occasionally reply "high") become nil.
func normalizeConfidence(fields map[string]any) *float64 {
	v, ok := fields["confidenceScore"].(float64)
	if !ok {
		return nil
	}
	if v < 0 {
		v = 0
	} else if v > 100 {
		v = 100
	}
	return &v
}

// normalizeSlipData converts a loosely parsed model reply into ExtractedSlipData
func normalizeSlipData(fields map[string]any) *ExtractedSlipData {
	return &ExtractedSlipData{
		TransactionID:   normalizeString(fields, "transactionId"),
		ToAccountNumber: normalizeString(fields, "toAccountNumber"),
		ConfidenceScore: normalizeConfidence(fields),
		RawText:         normalizeString(fields, "rawText"),
	}
}

// deriveStatus classifies an extraction by which key fields were found:
// complete when both transactionId and toAccountNumber are present,
// partial when exactly one is, empty when neither
func deriveStatus(data *ExtractedSlipData) string {
	switch {
	case data.TransactionID != nil && data.ToAccountNumber != nil:
		return StatusComplete
	case data.TransactionID != nil || data.ToAccountNumber != nil:
		return StatusPartial
	default:
		return StatusEmpty
	}
}

// estimateCostUSD prices a model call at per-1K-token rates, rounded to
// 6 decimal places
func estimateCostUSD(inputTokens, outputTokens int, ratePerKInput, ratePerKOutput float64) float64 {
	cost := float64(inputTokens)/1000*ratePerKInput + float64(outputTokens)/1000*ratePerKOutput
	return math.Round(cost*1e6) / 1e6
}

// estimateImageSizeKB approximates the decoded size of a base64 payload
// from its length alone. Padding is ignored; the value is telemetry, not
// an exact byte count.
func estimateImageSizeKB(base64Len int) int {
	return int(math.Round(float64(base64Len) * 3 / 4 / 1024))
}

// stripDataURI splits a data URI into its base64 payload and declared MIME
// type. Plain base64 input is returned unchanged with an empty MIME type.
func stripDataURI(s string) (payload, mimeType string) {
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	comma := strings.Index(s, ",")
	if comma == -1 {
		return s, ""
	}
	header := s[len("data:"):comma]
	payload = s[comma+1:]
	if idx := strings.Index(header, ";"); idx != -1 {
		header = header[:idx]
	}
	return payload, header
}

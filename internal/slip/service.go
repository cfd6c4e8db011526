package slip

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/local/slipparser/internal/metrics"
	"github.com/local/slipparser/internal/scanning"
)

// Default per-1K-token pricing used when no rates are configured
const (
	DefaultRatePerKInput  = 0.00015
	DefaultRatePerKOutput = 0.0006
)

// maxLoggedReplyLen caps how much raw model output lands in logs
const maxLoggedReplyLen = 500

// IDGenerator generates request identifiers
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator builds practically unique request IDs from a
// millisecond timestamp plus a random suffix
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles slip extraction requests
type Service struct {
	scanner        scanning.Scanner
	model          string
	ratePerKInput  float64
	ratePerKOutput float64
	idGenerator    IDGenerator
	timeSource     TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(scanner scanning.Scanner, model string, ratePerKInput, ratePerKOutput float64) *Service {
	return NewServiceWithDeps(scanner, model, ratePerKInput, ratePerKOutput, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(scanner scanning.Scanner, model string, ratePerKInput, ratePerKOutput float64, idGen IDGenerator, timeSrc TimeSource) *Service {
	if ratePerKInput == 0 {
		ratePerKInput = DefaultRatePerKInput
	}
	if ratePerKOutput == 0 {
		ratePerKOutput = DefaultRatePerKOutput
	}
	return &Service{
		scanner:        scanner,
		model:          model,
		ratePerKInput:  ratePerKInput,
		ratePerKOutput: ratePerKOutput,
		idGenerator:    idGen,
		timeSource:     timeSrc,
	}
}

// decodeBase64Image decodes standard base64, tolerating missing padding
func decodeBase64Image(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(payload); rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("decoding base64 image: %w", err)
}

// truncateForLog caps a string for log output
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// fail builds the error result for a failed request, carrying the request
// ID and the elapsed time so far
func (s *Service) fail(requestID string, start time.Time, httpStatus int, message string, err error) *Error {
	return &Error{
		RequestID:     requestID,
		Status:        StatusError,
		Message:       message,
		ProcessTimeMs: s.timeSource.Now().Sub(start).Milliseconds(),
		HTTPStatus:    httpStatus,
		Err:           err,
	}
}

// ParseSlip decodes a base64 slip image, sends it to the configured model
// provider, and assembles the extraction result. All failures return *Error
// with the request ID and elapsed time attached.
func (s *Service) ParseSlip(base64Image string) (*Result, error) {
	requestID := s.idGenerator.Generate()
	start := s.timeSource.Now()

	payload, declaredType := stripDataURI(base64Image)
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, s.fail(requestID, start, http.StatusBadRequest, "Missing image", nil)
	}

	// Size telemetry comes from the base64 length, not the decoded bytes
	imageSizeKB := estimateImageSizeKB(len(payload))

	imageData, err := decodeBase64Image(payload)
	if err != nil {
		slog.Error("Failed to decode image payload", "request_id", requestID, "error", err)
		return nil, s.fail(requestID, start, http.StatusInternalServerError, err.Error(), err)
	}

	aiStart := s.timeSource.Now()
	reply, err := s.scanner.ScanSlip(imageData, declaredType)
	aiEnd := s.timeSource.Now()
	aiTime := aiEnd.Sub(aiStart)

	if err != nil {
		wrapped := fmt.Errorf("scanning slip: %w", err)
		slog.Error("Failed to scan slip",
			"request_id", requestID,
			"provider", s.scanner.Name(),
			"image_size_kb", imageSizeKB,
			"error", err,
		)
		metrics.ObserveScan(s.scanner.Name(), StatusError, aiTime)
		return nil, s.fail(requestID, start, http.StatusInternalServerError, wrapped.Error(), wrapped)
	}

	fields, err := extractSlipJSON(reply.Text)
	if err != nil {
		slog.Error("Failed to extract JSON from model reply",
			"request_id", requestID,
			"provider", s.scanner.Name(),
			"raw_reply", truncateForLog(reply.Text, maxLoggedReplyLen),
			"error", err,
		)
		metrics.ObserveScan(s.scanner.Name(), StatusError, aiTime)
		return nil, s.fail(requestID, start, http.StatusInternalServerError, err.Error(), err)
	}

	data := normalizeSlipData(fields)
	status := deriveStatus(data)
	cost := estimateCostUSD(reply.InputTokens, reply.OutputTokens, s.ratePerKInput, s.ratePerKOutput)

	metrics.ObserveScan(s.scanner.Name(), status, aiTime)
	metrics.AddUsage(s.scanner.Name(), reply.InputTokens, reply.OutputTokens, cost)

	result := &Result{
		RequestID: requestID,
		Status:    status,
		Data:      data,
		AiScore:   data.ConfidenceScore,
		Meta: Meta{
			ProcessTimeMs: s.timeSource.Now().Sub(start).Milliseconds(),
			AiTimeMs:      aiTime.Milliseconds(),
			ImageSizeKB:   imageSizeKB,
			Model:         s.model,
			Tokens: TokenUsage{
				Input:            reply.InputTokens,
				Output:           reply.OutputTokens,
				Total:            reply.InputTokens + reply.OutputTokens,
				EstimatedCostUSD: cost,
			},
		},
	}

	slog.Info("Parsed slip",
		"request_id", requestID,
		"status", status,
		"process_time_ms", result.Meta.ProcessTimeMs,
		"ai_time_ms", result.Meta.AiTimeMs,
		"tokens", result.Meta.Tokens.Total,
	)

	return result, nil
}

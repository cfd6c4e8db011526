package scanning

// ModelReply contains the raw output of a model call
type ModelReply struct {
	// Text is the model's reply verbatim, expected to contain a JSON
	// object, possibly wrapped in markdown code fences
	Text string
	// InputTokens and OutputTokens are the usage counters reported by
	// the provider for this call
	InputTokens  int
	OutputTokens int
}

// Scanner defines the interface for slip scanning providers
type Scanner interface {
	// Name returns a short provider label used in logs and metrics
	Name() string
	// ScanSlip sends a slip image with the extraction prompt to the
	// model and returns its raw reply plus token usage
	ScanSlip(imageData []byte, contentType string) (*ModelReply, error)
	// Close closes the scanner and releases resources
	Close() error
}

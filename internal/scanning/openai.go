package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const openaiBaseURL = "https://api.openai.com/v1"

// OpenAI implements the Scanner interface using OpenAI's chat completions API
type OpenAI struct {
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAI creates a new OpenAI Scanner instance.
// The model must support vision input (gpt-4o, gpt-4o-mini, gpt-4-turbo).
func NewOpenAI(apiKey string, modelName string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	return &OpenAI{
		apiKey: apiKey,
		model:  modelName,
		client: &http.Client{},
	}, nil
}

// openaiChatRequest represents the request body for the chat completions API
type openaiChatRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string              `json:"role"`
	Content []openaiContentPart `json:"content"`
}

type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

// openaiChatResponse represents the response from the chat completions API
type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Name returns the provider label
func (o *OpenAI) Name() string {
	return "openai"
}

// ScanSlip sends a slip image with the extraction prompt to OpenAI and
// returns the raw reply plus token usage. The call carries no deadline.
func (o *OpenAI) ScanSlip(imageData []byte, contentType string) (*ModelReply, error) {
	ctx := context.Background()

	// Prepare image data (convert to PNG if needed)
	finalImageData, mimeType, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	// Vision input goes in as a data URI
	imageBase64 := base64.StdEncoding.EncodeToString(finalImageData)
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64)

	reqBody := openaiChatRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{
				Role: "user",
				Content: []openaiContentPart{
					{Type: "text", Text: slipScanPrompt},
					{Type: "image_url", ImageURL: &openaiImageURL{URL: dataURI}},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	// Make the request
	url := fmt.Sprintf("%s/chat/completions", openaiBaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(body))
	}

	// Parse response
	var chatResp openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	return &ModelReply{
		Text:         chatResp.Choices[0].Message.Content,
		InputTokens:  chatResp.Usage.PromptTokens,
		OutputTokens: chatResp.Usage.CompletionTokens,
	}, nil
}

// Close closes the OpenAI client (no-op for HTTP client)
func (o *OpenAI) Close() error {
	return nil
}

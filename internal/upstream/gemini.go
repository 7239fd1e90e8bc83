package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.5-flash-lite-preview-06-17"
)

// Gemini API structures
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// GeminiClient calls the generateContent endpoint of one model.
type GeminiClient struct {
	caller
	baseURL string
	model   string
}

// NewGeminiClient creates a client; empty model and base URL fall back to defaults.
func NewGeminiClient(model string, opts Options) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		caller:  newCaller("gemini", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (g *GeminiClient) Name() string {
	return fmt.Sprintf("Google Gemini (%s)", g.model)
}

// GenerateContent sends the prompt as a single user part, unmodified.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (json.RawMessage, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	return g.post(ctx, url, reqBody)
}

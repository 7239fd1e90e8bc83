// Package upstream forwards requests to Google's generative language and
// text-to-speech APIs and hands back their raw JSON responses.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"veda-backend/internal/metrics"

	"go.uber.org/zap"
)

// ErrUpstream is wrapped by every failed provider call. Its text is safe to
// show to clients; the wrapped detail is for logs only.
var ErrUpstream = errors.New("upstream request failed")

// maxErrorBody caps how much of a failed response is logged.
const maxErrorBody = 4 << 10

// TextGenerator produces a provider response for a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (json.RawMessage, error)
}

// SpeechSynthesizer produces a provider response carrying base64 audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (json.RawMessage, error)
}

// Options shared by both clients.
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Collector
	Logger     *zap.Logger
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// caller performs one JSON POST against a Google endpoint.
type caller struct {
	provider string
	apiKey   string
	client   *http.Client
	metrics  *metrics.Collector
	logger   *zap.Logger
}

func newCaller(provider string, opts Options) caller {
	return caller{
		provider: provider,
		apiKey:   opts.APIKey,
		client:   opts.httpClient(),
		metrics:  opts.Metrics,
		logger:   opts.logger().With(zap.String("component", "upstream"), zap.String("provider", provider)),
	}
}

func (c caller) post(ctx context.Context, url string, payload any) (json.RawMessage, error) {
	start := time.Now()
	body, err := c.do(ctx, url, payload)
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.metrics.RecordUpstreamCall(c.provider, result, time.Since(start))
	return body, err
}

func (c caller) do(ctx context.Context, url string, payload any) (json.RawMessage, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Keeping the key out of the URL keeps it out of transport errors and logs.
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("provider call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("provider returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, c.provider, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read provider response", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrUpstream, c.provider, err)
	}
	if !json.Valid(data) {
		c.logger.Error("provider returned invalid JSON", zap.Int("bytes", len(data)))
		return nil, fmt.Errorf("%w: %s returned invalid JSON", ErrUpstream, c.provider)
	}
	return json.RawMessage(data), nil
}

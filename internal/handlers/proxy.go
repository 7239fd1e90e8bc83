package handlers

import (
	"net/http"

	"veda-backend/internal/upstream"

	"go.uber.org/zap"
)

// ProxyHandler forwards client requests to the text and speech providers.
// Provider failures are reported with a fixed message; the detail stays in
// the logs.
type ProxyHandler struct {
	text   upstream.TextGenerator
	speech upstream.SpeechSynthesizer
	logger *zap.Logger
}

func NewProxyHandler(text upstream.TextGenerator, speech upstream.SpeechSynthesizer, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{
		text:   text,
		speech: speech,
		logger: logger.With(zap.String("component", "proxy_handler")),
	}
}

type GenerateContentRequest struct {
	Prompt string `json:"prompt"`
}

type TextToSpeechRequest struct {
	Text string `json:"text"`
}

// --- POST /api/generate-content ---

func (h *ProxyHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req GenerateContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	resp, err := h.text.GenerateContent(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("error proxying to text generation API", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch response from AI model.")
		return
	}
	writeRawJSON(w, http.StatusOK, resp)
}

// --- POST /api/text-to-speech ---

func (h *ProxyHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req TextToSpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("error proxying to TTS API", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate speech.")
		return
	}
	writeRawJSON(w, http.StatusOK, resp)
}

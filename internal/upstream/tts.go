package upstream

import (
	"context"
	"encoding/json"
	"strings"
)

const DefaultTTSBaseURL = "https://texttospeech.googleapis.com"

// Fixed voice for every synthesis request.
const (
	VoiceLanguageCode = "en-IN"
	VoiceName         = "en-IN-Chirp3-HD-Zubenelgenubi"
	AudioEncoding     = "MP3"
)

type ttsInput struct {
	Text string `json:"text"`
}

type ttsVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type ttsAudioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type ttsRequest struct {
	Input       ttsInput       `json:"input"`
	Voice       ttsVoice       `json:"voice"`
	AudioConfig ttsAudioConfig `json:"audioConfig"`
}

// SpeechClient calls Cloud Text-to-Speech text:synthesize.
type SpeechClient struct {
	caller
	baseURL string
}

func NewSpeechClient(opts Options) *SpeechClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultTTSBaseURL
	}
	return &SpeechClient{
		caller:  newCaller("tts", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Synthesize returns the provider response, whose audioContent field holds
// base64 MP3 data.
func (s *SpeechClient) Synthesize(ctx context.Context, text string) (json.RawMessage, error) {
	reqBody := ttsRequest{
		Input: ttsInput{Text: text},
		Voice: ttsVoice{
			LanguageCode: VoiceLanguageCode,
			Name:         VoiceName,
		},
		AudioConfig: ttsAudioConfig{AudioEncoding: AudioEncoding},
	}
	return s.post(ctx, s.baseURL+"/v1/text:synthesize", reqBody)
}

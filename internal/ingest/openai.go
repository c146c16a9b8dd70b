package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIRecognizer transcribes audio through the OpenAI transcription
// API.
type OpenAIRecognizer struct {
	client openai.Client
	model  string
}

// NewOpenAIRecognizer builds a recognizer for the given model. A nil
// httpClient uses the default transport.
func NewOpenAIRecognizer(apiKey, model string, httpClient *http.Client) *OpenAIRecognizer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAIRecognizer{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Recognize uploads the WAV file and returns the transcript.
func (r *OpenAIRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	resp, err := r.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(r.model),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

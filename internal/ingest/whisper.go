package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperRecognizer runs transcription locally through whisper.cpp.
// It never leaves the machine, which makes it the backend of choice
// when no API key is configured.
type WhisperRecognizer struct {
	model    whisper.Model
	language string
}

// NewWhisperRecognizer loads a ggml model from disk. Language may be
// empty, which means auto-detect.
func NewWhisperRecognizer(modelPath, language string) (*WhisperRecognizer, error) {
	if modelPath == "" {
		return nil, errors.New("ingest: empty whisper model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	if language == "" {
		language = "auto"
	}
	return &WhisperRecognizer{model: m, language: language}, nil
}

// Close releases the loaded model.
func (r *WhisperRecognizer) Close() error {
	if r.model == nil {
		return nil
	}
	return r.model.Close()
}

// Recognize decodes the WAV file to 16 kHz mono PCM and runs it
// through the model.
func (r *WhisperRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	pcm, err := decodeWAVToPCM16k(wavPath)
	if err != nil {
		return "", fmt.Errorf("decode wav: %w", err)
	}
	if len(pcm) == 0 {
		return "", ErrUnintelligible
	}

	wctx, err := r.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper context: %w", err)
	}
	if err := wctx.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}

	if len(parts) == 0 {
		return "", ErrUnintelligible
	}
	return strings.Join(parts, " "), nil
}

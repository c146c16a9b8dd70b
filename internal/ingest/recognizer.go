package ingest

import (
	"context"
	"errors"
)

// ErrUnintelligible is returned by a Recognizer when the audio decodes
// fine but contains no recognizable speech.
var ErrUnintelligible = errors.New("ingest: no recognizable speech")

// Recognizer transcribes a WAV file to text.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, wavPath string) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, wavPath string) (string, error) {
	return f(ctx, wavPath)
}

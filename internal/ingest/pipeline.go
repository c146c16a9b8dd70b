// Package ingest normalizes uploaded audio into the canonical waveform
// format and transcribes it to text.
//
// Non-WAV uploads are converted with an external ffmpeg process; the
// converted artifact is always deleted once transcription completes or
// fails, while caller-supplied files are never touched.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds one Transcribe call end to end, conversion
// included.
const DefaultTimeout = 60 * time.Second

// TranscriptionError describes why audio could not be turned into text.
// Cause is a complete, user-presentable sentence.
type TranscriptionError struct {
	Cause string
	Err   error
}

func (e *TranscriptionError) Error() string { return e.Cause }

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Options configures a Pipeline.
type Options struct {
	// FFmpegPath is the converter binary, looked up in PATH when not
	// absolute. Defaults to "ffmpeg".
	FFmpegPath string

	// TempDir is where conversion artifacts are written. Only files in
	// this directory are ever cleaned up. Defaults to os.TempDir().
	TempDir string

	// Timeout bounds one Transcribe call. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Pipeline converts uploaded audio to WAV and feeds it to a Recognizer.
type Pipeline struct {
	rec        Recognizer
	ffmpegPath string
	tempDir    string
	timeout    time.Duration
}

// NewPipeline builds a pipeline around the given recognizer.
func NewPipeline(rec Recognizer, opts Options) *Pipeline {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Pipeline{
		rec:        rec,
		ffmpegPath: opts.FFmpegPath,
		tempDir:    opts.TempDir,
		timeout:    opts.Timeout,
	}
}

// Transcribe turns the audio file at path into text. All failure paths
// return a *TranscriptionError whose Cause reads as a response sentence.
func (p *Pipeline) Transcribe(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	wavPath := path
	if !isCanonical(path) {
		converted := filepath.Join(p.tempDir, uuid.NewString()+".wav")
		defer p.cleanup(converted, path)
		if err := p.convert(ctx, path, converted); err != nil {
			return "", err
		}
		wavPath = converted
	}

	text, err := p.rec.Recognize(ctx, wavPath)
	switch {
	case errors.Is(err, ErrUnintelligible):
		return "", &TranscriptionError{
			Cause: "Sorry, I could not understand the audio.",
			Err:   err,
		}
	case err != nil:
		return "", &TranscriptionError{
			Cause: fmt.Sprintf("Could not request results from the speech service; %v", err),
			Err:   err,
		}
	}
	return text, nil
}

// isCanonical reports whether the file already carries the uncompressed
// waveform format the recognizers require.
func isCanonical(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

func (p *Pipeline) convert(ctx context.Context, in, out string) error {
	if _, err := exec.LookPath(p.ffmpegPath); err != nil {
		return &TranscriptionError{
			Cause: "Uploaded audio is not WAV and ffmpeg is not installed on the server. " +
				"Install ffmpeg or upload a WAV file.",
			Err: err,
		}
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.ffmpegPath, "-y", "-loglevel", "error", "-i", in, out)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		return &TranscriptionError{
			Cause: "ffmpeg failed to convert audio: " + diag,
			Err:   err,
		}
	}

	if _, err := os.Stat(out); err != nil {
		return &TranscriptionError{
			Cause: "ffmpeg did not produce an output file.",
			Err:   err,
		}
	}
	return nil
}

// cleanup removes a conversion artifact. The input file is never a
// candidate, and neither is anything outside the designated temp area.
// Failures are logged and dropped: cleanup must never mask the
// transcription outcome.
func (p *Pipeline) cleanup(converted, input string) {
	if converted == input || filepath.Dir(converted) != filepath.Clean(p.tempDir) {
		return
	}
	if err := os.Remove(converted); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("temporary wav cleanup failed", "path", converted, "error", err)
	}
}

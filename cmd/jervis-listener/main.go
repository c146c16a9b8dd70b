// Jervis-listener is a companion process that records utterances from
// the microphone and posts them to a running jervisd for
// interpretation. It stops when the daemon writes the stop marker
// file or the process receives an interrupt.
//
// Usage:
//
//	jervis-listener [flags]
//	jervis-listener --server http://assistant.local:5000
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/rishavshrivastavarxll-jpg/jervis/internal/listener"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/message"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := pflag.Bool("version", false, "print version and exit")
	serverURL := pflag.String("server", "http://localhost:5000", "jervisd base URL")
	stopFile := pflag.String("stop-file", filepath.Join(os.TempDir(), "jervis_stop.flag"), "stop marker file polled between utterances")
	chime := pflag.String("chime", "", "optional mp3 played before each recording")
	maxLength := pflag.Duration("max-length", 10*time.Second, "maximum utterance length")
	logLevel := pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("jervis-listener %s\n", version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	slog.Info("jervis-listener starting", "version", version, "server", *serverURL)

	if err := portaudio.Initialize(); err != nil {
		slog.Error("failed to initialize audio", "error", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	// A stale marker from a previous run would stop us immediately.
	if err := listener.ClearStopMarker(*stopFile); err != nil {
		slog.Warn("could not clear stop marker", "path", *stopFile, "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	chimer := loadChime(*chime)
	client := &http.Client{Timeout: 2 * time.Minute}

	for {
		if ctx.Err() != nil {
			slog.Info("interrupt received, exiting")
			return
		}
		if listener.StopRequested(*stopFile) {
			slog.Info("stop marker found, exiting", "path", *stopFile)
			_ = listener.ClearStopMarker(*stopFile)
			return
		}

		chimer()

		pcm, err := recordAuto(*maxLength)
		if err != nil {
			slog.Error("recording failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(pcm) == 0 {
			continue
		}

		result, err := postUtterance(ctx, client, *serverURL, pcm)
		if err != nil {
			slog.Error("sending utterance failed", "error", err)
			continue
		}
		slog.Info("assistant replied", "command", result.Command, "response", result.Response)
	}
}

// postUtterance uploads one recording as a multipart WAV and decodes
// the assistant's reply.
func postUtterance(ctx context.Context, client *http.Client, baseURL string, pcm []float32) (*message.Result, error) {
	wavPath := filepath.Join(os.TempDir(), uuid.NewString()+".wav")
	if err := writeWAV(wavPath, pcm); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	defer os.Remove(wavPath)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		f.Close()
		return nil, err
	}
	f.Close()
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/command", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, data)
	}

	var result message.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// loadChime decodes the mp3 once and returns a function that plays it
// to completion. Missing or broken chimes degrade to a no-op.
func loadChime(path string) func() {
	if path == "" {
		return func() {}
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Warn("chime unavailable", "path", path, "error", err)
		return func() {}
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		slog.Warn("chime decode failed", "path", path, "error", err)
		return func() {}
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		streamer.Close()
		slog.Warn("speaker init failed", "error", err)
		return func() {}
	}

	return func() {
		if err := streamer.Seek(0); err != nil {
			return
		}
		done := make(chan struct{})
		speaker.Play(beep.Seq(streamer, beep.Callback(func() {
			close(done)
		})))
		<-done
	}
}

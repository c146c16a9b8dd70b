// Jervis is a voice-first assistant daemon that interprets typed and
// spoken commands, runs them through installed skills and built-in
// intents, and answers over HTTP and WebSocket.
//
// Usage:
//
//	jervisd [flags]
//	jervisd --config /path/to/jervis.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/rishavshrivastavarxll-jpg/jervis/docs"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/config"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/encyclopedia"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/health"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/ingest"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/launcher"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/listener"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/media"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/proxy"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/router"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/server"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/skill"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/weather"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := pflag.Bool("version", false, "print version and exit")
	configFile := pflag.String("config", "", "path to config file (e.g. configs/jervis.local.yaml)")
	envFile := pflag.String("env", "", "path to .env file with API keys")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("jervisd %s\n", version)
		os.Exit(0)
	}

	// Secrets can live in a .env file during development.
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("failed to load env file", "path", *envFile, "error", err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("jervisd starting", "version", version)
	docs.SwaggerInfo.Version = version

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Outbound API traffic optionally tunnels through SOCKS5.
	wikiHTTP, err := proxy.Client(cfg.Proxy.SocksAddr, cfg.Encyclopedia.Timeout())
	if err != nil {
		slog.Error("failed to build proxy client", "error", err)
		os.Exit(1)
	}
	weatherHTTP, err := proxy.Client(cfg.Proxy.SocksAddr, cfg.Weather.Timeout())
	if err != nil {
		slog.Error("failed to build proxy client", "error", err)
		os.Exit(1)
	}

	// Load skill manifests, and reload them on SIGHUP.
	skills := skill.NewRegistry(cfg.Skills.ExecTimeout())
	skills.Load(cfg.Skills.Dir)
	go reloadOnSIGHUP(ctx, skills, cfg.Skills.Dir)

	// Initialize the transcription backend.
	var recognizer ingest.Recognizer
	switch cfg.Transcriber.Backend {
	case "openai":
		apiHTTP, err := proxy.Client(cfg.Proxy.SocksAddr, cfg.Transcriber.Timeout())
		if err != nil {
			slog.Error("failed to build proxy client", "error", err)
			os.Exit(1)
		}
		recognizer = ingest.NewOpenAIRecognizer(cfg.Transcriber.OpenAI.APIKey, cfg.Transcriber.OpenAI.Model, apiHTTP)
		slog.Info("using OpenAI transcriber", "model", cfg.Transcriber.OpenAI.Model)
	case "whisper":
		whisperRec, err := ingest.NewWhisperRecognizer(cfg.Transcriber.Whisper.ModelPath, cfg.Transcriber.Whisper.Language)
		if err != nil {
			slog.Error("failed to load whisper model", "path", cfg.Transcriber.Whisper.ModelPath, "error", err)
			os.Exit(1)
		}
		defer whisperRec.Close()
		recognizer = whisperRec
		slog.Info("using local whisper transcriber", "model", cfg.Transcriber.Whisper.ModelPath)
	default:
		slog.Error("unknown transcriber backend", "backend", cfg.Transcriber.Backend)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(recognizer, ingest.Options{
		FFmpegPath: cfg.Transcriber.FFmpegPath,
		TempDir:    cfg.Transcriber.TempDir,
		Timeout:    cfg.Transcriber.Timeout(),
	})

	// Assemble the interpretation core.
	opener := launcher.New()
	core := router.New(router.Options{
		Skills:   skills,
		Wiki:     encyclopedia.NewClient(cfg.Encyclopedia.Endpoint, wikiHTTP),
		Weather:  weather.NewClient(cfg.Weather.APIKey, cfg.Weather.Endpoint, weatherHTTP),
		Opener:   opener,
		Media:    media.NewPlayer(cfg.Media.Dir, opener, cfg.Media.Strict),
		Owner:    cfg.Assistant.Owner,
		Sentence: cfg.Encyclopedia.Sentences,
	})

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	srv := server.New(server.Options{
		Port:     cfg.Server.Port,
		Router:   core,
		Pipeline: pipeline,
		Listener: listener.NewController(),
		StopFile: cfg.Listener.StopFile,
		TempDir:  cfg.Transcriber.TempDir,
	})

	healthServer.SetReady(true)
	slog.Info("jervisd ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort,
		"skills", skills.Count())

	if err := srv.ListenAndServe(ctx); err != nil {
		slog.Error("command server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("jervisd stopped")
}

// reloadOnSIGHUP re-reads the skills directory whenever the process
// receives SIGHUP, so new manifests can be picked up without a restart.
func reloadOnSIGHUP(ctx context.Context, skills *skill.Registry, dir string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			skills.Load(dir)
			slog.Info("skills reloaded", "dir", dir, "count", skills.Count())
		}
	}
}

// Package config handles loading and validating the jervis configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
)

// Config is the root configuration for the jervis daemon.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Assistant    AssistantConfig    `mapstructure:"assistant"`
	Skills       SkillsConfig       `mapstructure:"skills"`
	Media        MediaConfig        `mapstructure:"media"`
	Weather      WeatherConfig      `mapstructure:"weather"`
	Encyclopedia EncyclopediaConfig `mapstructure:"encyclopedia"`
	Transcriber  TranscriberConfig  `mapstructure:"transcriber"`
	Proxy        ProxyConfig        `mapstructure:"proxy"`
	Listener     ListenerConfig     `mapstructure:"listener"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds the command and health server settings.
type ServerConfig struct {
	Port       int `mapstructure:"port"`
	HealthPort int `mapstructure:"health_port"`
}

// AssistantConfig holds assistant persona settings.
type AssistantConfig struct {
	Owner string `mapstructure:"owner"`
}

// SkillsConfig configures skill manifest loading.
type SkillsConfig struct {
	Dir            string `mapstructure:"dir"`
	ExecTimeoutSec int    `mapstructure:"exec_timeout_sec"`
}

// MediaConfig configures local video playback.
type MediaConfig struct {
	Dir string `mapstructure:"dir"`
	// Strict surfaces launch failures instead of claiming success.
	Strict bool `mapstructure:"strict"`
}

// WeatherConfig holds OpenWeatherMap API settings.
type WeatherConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Endpoint   string `mapstructure:"endpoint"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// EncyclopediaConfig holds Wikipedia API settings.
type EncyclopediaConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Sentences  int    `mapstructure:"sentences"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// TranscriberConfig selects and configures the speech-to-text backend.
type TranscriberConfig struct {
	Backend    string        `mapstructure:"backend"` // "openai" or "whisper"
	TimeoutSec int           `mapstructure:"timeout_sec"`
	FFmpegPath string        `mapstructure:"ffmpeg_path"`
	TempDir    string        `mapstructure:"temp_dir"`
	OpenAI     OpenAIConfig  `mapstructure:"openai"`
	Whisper    WhisperConfig `mapstructure:"whisper"`
}

// OpenAIConfig holds OpenAI transcription API settings.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// WhisperConfig holds local whisper.cpp settings.
type WhisperConfig struct {
	ModelPath string `mapstructure:"model_path"`
	Language  string `mapstructure:"language"`
}

// ProxyConfig routes outbound API traffic through a SOCKS5 proxy.
type ProxyConfig struct {
	SocksAddr string `mapstructure:"socks_addr"`
}

// ListenerConfig controls the external microphone listener.
type ListenerConfig struct {
	StopFile string `mapstructure:"stop_file"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text, pretty
}

// Timeout converts the configured seconds into a duration.
func (c WeatherConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

// Timeout converts the configured seconds into a duration.
func (c EncyclopediaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Timeout converts the configured seconds into a duration.
func (c TranscriberConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// ExecTimeout converts the configured seconds into a duration.
func (c SkillsConfig) ExecTimeout() time.Duration {
	return time.Duration(c.ExecTimeoutSec) * time.Second
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./jervis.yaml, ./configs/jervis.yaml, /etc/jervis/jervis.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.health_port", 5001)
	v.SetDefault("assistant.owner", "Rishav")
	v.SetDefault("skills.dir", "skills")
	v.SetDefault("skills.exec_timeout_sec", 10)
	v.SetDefault("media.dir", "videos")
	v.SetDefault("media.strict", false)
	v.SetDefault("weather.endpoint", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.timeout_sec", 8)
	v.SetDefault("encyclopedia.endpoint", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("encyclopedia.sentences", 3)
	v.SetDefault("encyclopedia.timeout_sec", 8)
	v.SetDefault("transcriber.backend", "openai")
	v.SetDefault("transcriber.timeout_sec", 60)
	v.SetDefault("transcriber.ffmpeg_path", "ffmpeg")
	v.SetDefault("transcriber.temp_dir", os.TempDir())
	v.SetDefault("transcriber.openai.model", "whisper-1")
	v.SetDefault("transcriber.whisper.language", "en")
	v.SetDefault("listener.stop_file", filepath.Join(os.TempDir(), "jervis_stop.flag"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("jervis")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/jervis")
	}

	// Environment variables: JERVIS_SERVER_PORT, JERVIS_TRANSCRIBER_BACKEND, etc.
	v.SetEnvPrefix("JERVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Transcriber.OpenAI.APIKey = resolveEnvRef(cfg.Transcriber.OpenAI.APIKey)
	cfg.Weather.APIKey = resolveEnvRef(cfg.Weather.APIKey)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case "pretty":
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}

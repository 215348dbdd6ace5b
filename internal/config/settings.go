package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml configs can use values like "30s"
// or "20m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Settings is the full application configuration. Values come from
// defaults, then an optional yaml file, then environment overrides, in
// that order.
type Settings struct {
	Server      ServerSettings      `yaml:"server"`
	Pipeline    PipelineSettings    `yaml:"pipeline"`
	Storage     StorageSettings     `yaml:"storage"`
	Transcriber TranscriberSettings `yaml:"transcriber"`
	Diarization DiarizationSettings `yaml:"diarization"`
	Redis       RedisSettings       `yaml:"redis"`
}

// ServerSettings configures the HTTP API server.
type ServerSettings struct {
	Host        string   `yaml:"host"`
	Port        string   `yaml:"port"`
	Environment string   `yaml:"environment"`
	ReadTimeout Duration `yaml:"read_timeout"`
	// WriteTimeout must cover the longest pipeline budget or slow
	// transcriptions get cut off mid-response.
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// PipelineSettings configures the acquisition pipeline.
type PipelineSettings struct {
	// MaxDurationSeconds is the video acceptance ceiling.
	MaxDurationSeconds int `yaml:"max_duration_seconds"`
	// MaxConcurrent bounds simultaneous audio transcriptions.
	MaxConcurrent int `yaml:"max_concurrent"`
	// MaxQueue is how many requests may wait for a transcription slot.
	MaxQueue int `yaml:"max_queue"`
}

// StorageSettings selects and configures the transcript store.
type StorageSettings struct {
	// Backend is "sqlite", "postgres" or "none".
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// TranscriberSettings selects the speech-to-text engine.
type TranscriberSettings struct {
	// Engine is "whisper_cpp" or "openai".
	Engine     string `yaml:"engine"`
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
}

// DiarizationSettings configures the optional speaker identification pass.
type DiarizationSettings struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// RedisSettings configures the shared rate limiter backend. An empty Addr
// disables rate limiting.
type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DefaultSettings returns the configuration used when nothing else is
// specified.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host:         "0.0.0.0",
			Port:         "8080",
			Environment:  "development",
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(20 * time.Minute),
			IdleTimeout:  Duration(2 * time.Minute),
		},
		Pipeline: PipelineSettings{
			MaxDurationSeconds: 5400,
			MaxConcurrent:      2,
			MaxQueue:           8,
		},
		Storage: StorageSettings{
			Backend:    "sqlite",
			SQLitePath: "data/transcripts.db",
		},
		Transcriber: TranscriberSettings{
			Engine:     "whisper_cpp",
			BinaryPath: "whisper-cli",
			ModelPath:  "models/ggml-base.bin",
			Language:   "auto",
		},
		Diarization: DiarizationSettings{
			Enabled: true,
			Model:   "gemini-flash-latest",
		},
	}
}

// LoadSettings builds settings from defaults, the yaml file at path (if
// path is non-empty and the file exists) and environment overrides.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, settings); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	settings.applyEnvOverrides()

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		s.Server.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		s.Server.Environment = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		s.Storage.Backend = "postgres"
		s.Storage.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		s.Redis.Addr = v
	}
	if v := os.Getenv("WHISPER_BINARY"); v != "" {
		s.Transcriber.BinaryPath = v
	}
	if v := os.Getenv("WHISPER_MODEL"); v != "" {
		s.Transcriber.ModelPath = v
	}
}

// Validate checks settings consistency before anything starts.
func (s *Settings) Validate() error {
	if err := ValidateTimeout(s.Server.ReadTimeout.Std(), "server read"); err != nil {
		return err
	}
	if err := ValidateTimeout(s.Server.WriteTimeout.Std(), "server write"); err != nil {
		return err
	}
	if err := ValidateConcurrency(s.Pipeline.MaxConcurrent, "pipeline"); err != nil {
		return err
	}
	if s.Pipeline.MaxDurationSeconds <= 0 {
		return fmt.Errorf("pipeline max duration must be positive")
	}
	if s.Pipeline.MaxQueue < 0 {
		return fmt.Errorf("pipeline max queue must not be negative")
	}

	switch s.Storage.Backend {
	case "sqlite":
		if s.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite storage requires a path")
		}
	case "postgres":
		if s.Storage.PostgresDSN == "" {
			return fmt.Errorf("postgres storage requires a DSN")
		}
	case "none", "":
	default:
		return fmt.Errorf("unknown storage backend %q", s.Storage.Backend)
	}

	switch s.Transcriber.Engine {
	case "whisper_cpp", "openai":
	default:
		return fmt.Errorf("unknown transcriber engine %q", s.Transcriber.Engine)
	}
	return nil
}

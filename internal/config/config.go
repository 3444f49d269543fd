package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Collaborators
	WhisperURL      string        `env:"WHISPER_URL" envDefault:"http://localhost:8000/v1/audio/transcriptions"`
	WhisperModel    string        `env:"WHISPER_MODEL" envDefault:"base"`
	WhisperTimeout  time.Duration `env:"WHISPER_TIMEOUT" envDefault:"5m"`
	Language        string        `env:"LANGUAGE" envDefault:"tr"`
	Temperature     float64       `env:"TEMPERATURE" envDefault:"0"`
	PreprocessAudio bool          `env:"PREPROCESS_AUDIO" envDefault:"false"`

	PyannoteURL     string        `env:"PYANNOTE_URL" envDefault:"http://localhost:8388/diarize"`
	PyannoteTimeout time.Duration `env:"PYANNOTE_TIMEOUT" envDefault:"5m"`
	MinSpeakers     int           `env:"MIN_SPEAKERS" envDefault:"0"`
	MaxSpeakers     int           `env:"MAX_SPEAKERS" envDefault:"0"`
	DiarizeEnabled  bool          `env:"DIARIZE_ENABLED" envDefault:"true"`

	// Alignment core tuning
	PauseThreshold      float64 `env:"PAUSE_THRESHOLD" envDefault:"1.5"`
	MaxFallbackSpeakers int     `env:"MAX_FALLBACK_SPEAKERS" envDefault:"2"`
	MergeGap            float64 `env:"MERGE_GAP" envDefault:"0.3"`
	MaxLineDuration     float64 `env:"MAX_LINE_DURATION" envDefault:"10"`

	// Job processing
	Workers   int `env:"WORKERS" envDefault:"2"`
	QueueSize int `env:"QUEUE_SIZE" envDefault:"64"`

	// Storage
	DataDir   string        `env:"DATA_DIR" envDefault:"./data"`
	WatchDir  string        `env:"WATCH_DIR"` // empty = drop-dir intake disabled
	Retention time.Duration `env:"RETENTION" envDefault:"72h"`

	// HTTP
	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	MaxUploadMB  int64         `env:"MAX_UPLOAD_MB" envDefault:"256"`

	AuthToken string `env:"AUTH_TOKEN"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile    string
	HTTPAddr   string
	LogLevel   string
	DataDir    string
	WatchDir   string
	WhisperURL string
}

// Load reads configuration from .env file, environment variables, and CLI
// overrides. Priority: CLI flags > environment variables > .env file >
// struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.DataDir != "" {
		cfg.DataDir = overrides.DataDir
	}
	if overrides.WatchDir != "" {
		cfg.WatchDir = overrides.WatchDir
	}
	if overrides.WhisperURL != "" {
		cfg.WhisperURL = overrides.WhisperURL
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PauseThreshold <= 0 {
		return fmt.Errorf("PAUSE_THRESHOLD must be > 0, got %v", c.PauseThreshold)
	}
	if c.MaxFallbackSpeakers < 1 {
		return fmt.Errorf("MAX_FALLBACK_SPEAKERS must be >= 1, got %d", c.MaxFallbackSpeakers)
	}
	if c.MergeGap < 0 {
		return fmt.Errorf("MERGE_GAP must be >= 0, got %v", c.MergeGap)
	}
	if c.MaxLineDuration <= 0 {
		return fmt.Errorf("MAX_LINE_DURATION must be > 0, got %v", c.MaxLineDuration)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1, got %d", c.Workers)
	}
	return nil
}

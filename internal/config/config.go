package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Polish        PolishConfig        `yaml:"polish"`
	Classifier    ClassifierConfig    `yaml:"classifier"`
	Store         StoreConfig         `yaml:"store"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// AudioConfig contains capture and chunking parameters.
type AudioConfig struct {
	SampleRate         int     `yaml:"sample_rate"`
	Channels           int     `yaml:"channels"`
	MaxChunkSeconds    float64 `yaml:"max_chunk_seconds"`
	MinSilenceSeconds  float64 `yaml:"min_silence_seconds"`
	SilenceThreshold   int     `yaml:"silence_threshold"`
	CaptureDevice      string  `yaml:"capture_device"`
	CaptureInputFormat string  `yaml:"capture_input_format"`
}

// TranscriptionConfig contains the speech-to-text collaborator settings.
type TranscriptionConfig struct {
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// PolishConfig contains the optional rewriting collaborator settings.
type PolishConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ClassifierConfig holds the priority-ordered subject keyword list.
type ClassifierConfig struct {
	Keywords []string `yaml:"keywords"`
}

// StoreConfig locates the log file directory.
type StoreConfig struct {
	Dir string `yaml:"dir"`
	Ext string `yaml:"ext"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration that works without a config file.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:         44100,
			Channels:           1,
			MaxChunkSeconds:    180,
			MinSilenceSeconds:  1,
			SilenceThreshold:   500,
			CaptureDevice:      "default",
			CaptureInputFormat: "alsa",
		},
		Transcription: TranscriptionConfig{
			Model:          "whisper-1",
			TimeoutSeconds: 120,
			MaxUploadBytes: 25 * 1024 * 1024,
		},
		Polish: PolishConfig{
			Enabled:        true,
			Model:          "gpt-4o",
			TimeoutSeconds: 60,
		},
		Classifier: ClassifierConfig{
			Keywords: []string{"ai", "biology", "reading note"},
		},
		Store: StoreConfig{
			Dir: "transcriptions",
			Ext: "txt",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and parses the configuration file, filling omitted fields from
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("transcription config: %w", err)
	}
	if err := c.Polish.Validate(); err != nil {
		return fmt.Errorf("polish config: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates audio configuration.
func (a *AudioConfig) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}
	if a.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", a.Channels)
	}
	if a.MaxChunkSeconds <= 0 {
		return fmt.Errorf("max_chunk_seconds must be positive, got %f", a.MaxChunkSeconds)
	}
	if a.MinSilenceSeconds <= 0 {
		return fmt.Errorf("min_silence_seconds must be positive, got %f", a.MinSilenceSeconds)
	}
	if a.MinSilenceSeconds >= a.MaxChunkSeconds {
		return fmt.Errorf("min_silence_seconds (%f) must be below max_chunk_seconds (%f)",
			a.MinSilenceSeconds, a.MaxChunkSeconds)
	}
	if a.SilenceThreshold < 0 {
		return fmt.Errorf("silence_threshold cannot be negative, got %d", a.SilenceThreshold)
	}
	// The threshold is compared against 16-bit PCM amplitudes.
	if a.SilenceThreshold > math.MaxInt16 {
		return fmt.Errorf("silence_threshold must be at most %d, got %d", math.MaxInt16, a.SilenceThreshold)
	}
	return nil
}

// Validate validates transcription configuration.
func (t *TranscriptionConfig) Validate() error {
	if t.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if t.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", t.TimeoutSeconds)
	}
	if t.MaxUploadBytes < 1024 {
		return fmt.Errorf("max_upload_bytes must be at least 1024, got %d", t.MaxUploadBytes)
	}
	return nil
}

// Validate validates polish configuration.
func (p *PolishConfig) Validate() error {
	if !p.Enabled {
		return nil
	}
	if p.Model == "" {
		return fmt.Errorf("model cannot be empty when polish is enabled")
	}
	if p.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", p.TimeoutSeconds)
	}
	return nil
}

// Validate validates store configuration.
func (s *StoreConfig) Validate() error {
	if s.Dir == "" {
		return fmt.Errorf("dir cannot be empty")
	}
	if s.Ext == "" {
		return fmt.Errorf("ext cannot be empty")
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	valid := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !valid[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	return nil
}

// MaxChunkDuration returns the chunk cap as a time.Duration.
func (a *AudioConfig) MaxChunkDuration() time.Duration {
	return time.Duration(a.MaxChunkSeconds * float64(time.Second))
}

// MinSilenceDuration returns the minimum silence gap as a time.Duration.
func (a *AudioConfig) MinSilenceDuration() time.Duration {
	return time.Duration(a.MinSilenceSeconds * float64(time.Second))
}

// Timeout returns the transcription timeout as a time.Duration.
func (t *TranscriptionConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Timeout returns the polish timeout as a time.Duration.
func (p *PolishConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

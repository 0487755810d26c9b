package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
audio:
  sample_rate: 16000
  max_chunk_seconds: 60
classifier:
  keywords: ["chemistry"]
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample_rate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.MaxChunkDuration() != time.Minute {
		t.Errorf("max chunk = %v, want 1m", cfg.Audio.MaxChunkDuration())
	}
	if len(cfg.Classifier.Keywords) != 1 || cfg.Classifier.Keywords[0] != "chemistry" {
		t.Errorf("keywords = %v", cfg.Classifier.Keywords)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	// Unset sections keep their defaults.
	if cfg.Transcription.Model != "whisper-1" {
		t.Errorf("transcription model = %q, want default", cfg.Transcription.Model)
	}
	if cfg.Store.Dir != "transcriptions" {
		t.Errorf("store dir = %q, want default", cfg.Store.Dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad sample rate", "audio:\n  sample_rate: -1\n", "sample_rate"},
		{"threshold above int16 range", "audio:\n  silence_threshold: 40000\n", "silence_threshold"},
		{"silence above cap", "audio:\n  max_chunk_seconds: 1\n  min_silence_seconds: 2\n", "min_silence_seconds"},
		{"bad log level", "logging:\n  level: loud\n", "level"},
		{"empty transcription model", "transcription:\n  model: \"\"\n", "model"},
		{"tiny upload limit", "transcription:\n  max_upload_bytes: 10\n", "max_upload_bytes"},
		{"not yaml", "{{{", "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestPolishDisabledSkipsValidation(t *testing.T) {
	cfg := Default()
	cfg.Polish.Enabled = false
	cfg.Polish.Model = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled polish should not be validated: %v", err)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	if got := cfg.Audio.MaxChunkDuration(); got != 3*time.Minute {
		t.Errorf("MaxChunkDuration = %v, want 3m", got)
	}
	if got := cfg.Audio.MinSilenceDuration(); got != time.Second {
		t.Errorf("MinSilenceDuration = %v, want 1s", got)
	}
	if got := cfg.Transcription.Timeout(); got != 2*time.Minute {
		t.Errorf("transcription Timeout = %v, want 2m", got)
	}
}

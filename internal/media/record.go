package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/voice-notes-lab/internal/logging"
)

// RecordOptions configure microphone capture.
type RecordOptions struct {
	// Device is the ffmpeg input device name, e.g. "default" for ALSA.
	Device string
	// Format is the ffmpeg input format, e.g. "alsa" on Linux or
	// "avfoundation" on macOS.
	Format     string
	SampleRate int
	Channels   int
}

// DefaultRecordOptions capture mono 44.1 kHz from the default ALSA device.
func DefaultRecordOptions() RecordOptions {
	return RecordOptions{Device: "default", Format: "alsa", SampleRate: 44100, Channels: 1}
}

// Record captures microphone audio to a WAV file at outPath until ctx is
// cancelled. Cancellation is the normal stop signal: when the context ends
// and a non-empty recording exists on disk, Record returns nil. Any failure
// before that aborts the run.
func Record(ctx context.Context, outPath string, opts RecordOptions) error {
	if opts.Device == "" || opts.Format == "" {
		d := DefaultRecordOptions()
		if opts.Device == "" {
			opts.Device = d.Device
		}
		if opts.Format == "" {
			opts.Format = d.Format
		}
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.Channels <= 0 {
		opts.Channels = 1
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-f", opts.Format,
		"-i", opts.Device,
		"-ar", fmt.Sprintf("%d", opts.SampleRate),
		"-ac", fmt.Sprintf("%d", opts.Channels),
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Infow("recording started", "device", opts.Device, "path", outPath)
	err := cmd.Run()
	if ctx.Err() != nil {
		// Stop requested. ffmpeg was killed, which is expected; accept the
		// capture as long as it produced data.
		if st, serr := os.Stat(outPath); serr == nil && st.Size() > 0 {
			logging.Infow("recording stopped", "path", outPath, "bytes", st.Size())
			return nil
		}
		return fmt.Errorf("recording interrupted before any audio was written")
	}
	if err != nil {
		logging.Errorw("ffmpeg capture failed", "err", err, "stderr", truncate(stderr.String(), 400))
		return fmt.Errorf("ffmpeg capture: %w", err)
	}
	return nil
}

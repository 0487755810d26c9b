package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/voice-notes-lab/internal/logging"
)

// ErrCompression marks a failed or insufficient re-encode. It is chunk-local:
// the caller records the affected fragment as absent and keeps going.
var ErrCompression = errors.New("audio compression failed")

// Compress re-encodes inPath to 16 kHz mono at 48 kbit/s using ffmpeg.
// The input file is left untouched.
//
//	ffmpeg -y -i in -ar 16000 -ac 1 -b:a 48k out
func Compress(ctx context.Context, inPath, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", inPath,
		"-ar", "16000", "-ac", "1", "-b:a", "48k",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		logging.Warnw("ffmpeg re-encode failed", "in", inPath, "err", err, "stderr", truncate(stderr.String(), 400))
		return fmt.Errorf("%w: ffmpeg: %v", ErrCompression, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

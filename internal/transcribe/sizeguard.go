package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/voice-notes-lab/internal/logging"
	"github.com/voice-notes-lab/internal/media"
)

// DefaultByteLimit is the upload ceiling enforced by the transcription
// collaborator (25 MiB).
const DefaultByteLimit = 25 * 1024 * 1024

// CompressFunc re-encodes inPath into outPath at a reduced rate.
type CompressFunc func(ctx context.Context, inPath, outPath string) error

// SizeGuard keeps audio payloads under the collaborator's hard byte
// ceiling, re-encoding to 16 kHz mono when a file is too large. The
// original file is never touched.
type SizeGuard struct {
	Limit    int64
	Compress CompressFunc
}

// NewSizeGuard returns a guard with the default limit and ffmpeg re-encode.
func NewSizeGuard(limit int64) *SizeGuard {
	if limit <= 0 {
		limit = DefaultByteLimit
	}
	return &SizeGuard{Limit: limit, Compress: media.Compress}
}

// EnsureUnderLimit returns a path whose file fits under the byte limit,
// together with a cleanup func for any compressed copy it created. When the
// input already fits, the input path is returned with a no-op cleanup. A
// re-encode that fails, or whose output still exceeds the limit, reports
// media.ErrCompression; this is fatal for the chunk, not for the run.
func (g *SizeGuard) EnsureUnderLimit(ctx context.Context, path string) (string, func(), error) {
	noop := func() {}
	st, err := os.Stat(path)
	if err != nil {
		return "", noop, fmt.Errorf("%w: stat: %v", media.ErrCompression, err)
	}
	if st.Size() <= g.Limit {
		return path, noop, nil
	}

	logging.Warnw("audio exceeds upload limit, re-encoding",
		"path", path, "bytes", st.Size(), "limit", g.Limit)
	out := compressedName(path)
	if err := g.Compress(ctx, path, out); err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.Remove(out) }
	cst, err := os.Stat(out)
	if err != nil {
		cleanup()
		return "", noop, fmt.Errorf("%w: stat compressed: %v", media.ErrCompression, err)
	}
	if cst.Size() > g.Limit {
		cleanup()
		return "", noop, fmt.Errorf("%w: still %d bytes after re-encode (limit %d)", media.ErrCompression, cst.Size(), g.Limit)
	}
	return out, cleanup, nil
}

func compressedName(path string) string {
	if strings.HasSuffix(path, ".wav") {
		return strings.TrimSuffix(path, ".wav") + "_compressed.wav"
	}
	return path + "_compressed.wav"
}

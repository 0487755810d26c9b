package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/voice-notes-lab/internal/audio"
	"github.com/voice-notes-lab/internal/logging"
	"github.com/voice-notes-lab/internal/media"
	"github.com/voice-notes-lab/internal/metrics"
)

// ErrEmptyTranscript is returned when every chunk failed and the stitched
// transcript is empty. This is the only stitch outcome surfaced as a
// run-level failure; chunks that succeed with empty text (silence) are not
// failures and yield an empty transcript with no error.
var ErrEmptyTranscript = errors.New("all chunks failed to transcribe")

// Fragment is the transcription outcome for one chunk. A failed chunk is
// recorded with its error rather than silently dropped, so a stitched
// transcript can note gaps.
type Fragment struct {
	Index int
	Text  string
	Err   error
}

// Absent reports whether the fragment's chunk produced no text.
func (f Fragment) Absent() bool { return f.Err != nil }

// Stitcher transcribes chunks in order and concatenates the results.
type Stitcher struct {
	Transcriber Transcriber
	Guard       *SizeGuard
	// TmpDir receives the transient per-chunk WAV exports. Empty means
	// os.TempDir().
	TmpDir  string
	Metrics *metrics.Metrics
}

// Stitch exports each chunk to a transient WAV, passes it through the size
// guard, and invokes the transcription collaborator. Successful fragments
// are joined with single spaces in original chunk order; a failed chunk is
// logged, recorded absent, and skipped — one chunk's failure never aborts
// the run. The transient export is deleted on both success and failure
// paths. Stitch fails only when every chunk failed.
func (s *Stitcher) Stitch(ctx context.Context, buf *audio.Buffer, chunks []audio.Chunk) (string, []Fragment, error) {
	tmpDir := s.TmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	fragments := make([]Fragment, 0, len(chunks))
	var sb strings.Builder
	for _, c := range chunks {
		text, err := s.transcribeChunk(ctx, buf, c, tmpDir)
		fragments = append(fragments, Fragment{Index: c.Index, Text: text, Err: err})
		if err != nil {
			s.countFailure(err)
			logging.Warnw("chunk transcription failed, leaving gap",
				append(logging.ChunkFields(c.Index, c.End-c.Start, int(c.Duration(buf).Milliseconds())), "err", err)...)
			continue
		}
		if s.Metrics != nil {
			s.Metrics.TranscriptionSuccesses.Inc()
		}
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}

	out := sb.String()
	if out == "" && len(chunks) > 0 && allAbsent(fragments) {
		return "", fragments, ErrEmptyTranscript
	}
	return out, fragments, nil
}

func allAbsent(fragments []Fragment) bool {
	for _, f := range fragments {
		if !f.Absent() {
			return false
		}
	}
	return true
}

// transcribeChunk owns the transient export for one chunk: write, guard,
// transcribe, delete. Cleanup runs on every path.
func (s *Stitcher) transcribeChunk(ctx context.Context, buf *audio.Buffer, c audio.Chunk, tmpDir string) (string, error) {
	wav := audio.EncodeWAV(c.Samples(buf), buf.SampleRate, buf.Channels)
	path := filepath.Join(tmpDir, fmt.Sprintf("chunk_%s.wav", uuid.NewString()))
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return "", fmt.Errorf("%w: export chunk: %v", ErrTranscription, err)
	}
	defer os.Remove(path)

	sendPath := path
	if s.Guard != nil {
		guarded, cleanup, err := s.Guard.EnsureUnderLimit(ctx, path)
		if err != nil {
			return "", err
		}
		defer cleanup()
		sendPath = guarded
	}

	if s.Metrics != nil {
		s.Metrics.TranscriptionRequests.Inc()
	}
	return s.Transcriber.Transcribe(ctx, sendPath)
}

func (s *Stitcher) countFailure(err error) {
	if s.Metrics == nil {
		return
	}
	if errors.Is(err, media.ErrCompression) {
		s.Metrics.CompressionFailures.Inc()
	}
	s.Metrics.TranscriptionFailures.Inc()
}

package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/voice-notes-lab/internal/audio"
	"github.com/voice-notes-lab/internal/logging"
	"github.com/voice-notes-lab/internal/metrics"
	"github.com/voice-notes-lab/internal/store"
	"github.com/voice-notes-lab/internal/textproc"
	"github.com/voice-notes-lab/internal/transcribe"
)

// ErrNoTranscript is returned when a run ends up with no text to merge.
var ErrNoTranscript = errors.New("transcript is empty")

// Polisher is the optional rewriting stage. Implementations must degrade to
// identity on failure; the pipeline never treats polishing as fatal.
type Polisher interface {
	Polish(ctx context.Context, text string) string
}

// Result describes one completed run.
type Result struct {
	// Path is the merged log file.
	Path string
	// Subject is set when the classifier routed the text to a subject log.
	Subject string
	// Text is the final normalized (and possibly polished) content merged
	// into the log.
	Text string
	// Fragments records the per-chunk transcription outcomes, gaps included.
	Fragments []transcribe.Fragment
}

// Pipeline wires the full flow: chunk, stitch, classify, normalize,
// optionally polish, and merge into a log file. It runs synchronously;
// each stage completes before the next starts.
type Pipeline struct {
	ChunkOpts audio.ChunkerOptions
	Stitcher  *transcribe.Stitcher
	Polisher  Polisher // nil disables polishing
	Store     *store.Store
	// Keywords is the priority-ordered subject list for classification.
	Keywords []string
	// ParagraphSize is the sentence count per paragraph (default 3).
	ParagraphSize int
	Metrics       *metrics.Metrics
}

// Run processes a captured audio buffer end to end and returns the merged
// log path. Only a chunking failure or a transcript with every chunk failed
// surfaces as an error; chunk-local problems degrade the result instead.
func (p *Pipeline) Run(ctx context.Context, buf *audio.Buffer) (*Result, error) {
	runID := uuid.NewString()
	logging.Infow("run started", append(logging.RunFields(runID, "audio"),
		"duration_ms", buf.Duration().Milliseconds())...)

	chunks, err := audio.SplitOnSilence(buf, p.ChunkOpts)
	if err != nil {
		return nil, err
	}
	if p.Metrics != nil {
		for _, c := range chunks {
			p.Metrics.ChunksGenerated.Inc()
			p.Metrics.ChunkDuration.Observe(c.Duration(buf).Seconds())
		}
	}

	raw, fragments, err := p.Stitcher.Stitch(ctx, buf, chunks)
	if err != nil {
		return nil, err
	}
	res, err := p.RunText(ctx, raw)
	if err != nil {
		return nil, err
	}
	res.Fragments = fragments
	logging.Infow("run finished", append(logging.RunFields(runID, "audio"),
		"path", res.Path, "subject", res.Subject, "gaps", countGaps(fragments))...)
	return res, nil
}

// RunText is the text-only entry point: it classifies, normalizes,
// optionally polishes, and merges an already-transcribed text.
func (p *Pipeline) RunText(ctx context.Context, raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoTranscript
	}

	// Classification looks at the raw transcript, before any editing
	// removes the spoken routing cue.
	keywords := p.Keywords
	if len(keywords) == 0 {
		keywords = textproc.DefaultKeywords
	}
	subject, matched := textproc.Classify(raw, keywords)

	sentences := textproc.SegmentSentences(raw)
	paragraphs := textproc.GroupParagraphs(sentences, p.ParagraphSize)
	blocks := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		block := textproc.Clean(para)
		if block == "" {
			continue
		}
		if p.Polisher != nil {
			block = p.Polisher.Polish(ctx, block)
		}
		blocks = append(blocks, block)
	}
	final := strings.Join(blocks, "\n\n")
	if strings.TrimSpace(final) == "" {
		return nil, ErrNoTranscript
	}

	var path string
	var err error
	if matched {
		path, err = p.Store.AppendSubject(final, subject)
	} else {
		path, err = p.Store.AppendWeekly(final)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Path: path, Subject: subject, Text: final}, nil
}

func countGaps(fragments []transcribe.Fragment) int {
	n := 0
	for _, f := range fragments {
		if f.Absent() {
			n++
		}
	}
	return n
}

package audio

import (
	"math"
	"time"

	"github.com/voice-notes-lab/internal/logging"
)

// Chunk is a contiguous sub-range of a Buffer. Chunks of one buffer are
// totally ordered and contiguous: End of chunk i equals Start of chunk i+1,
// and their concatenation reconstructs the buffer exactly.
type Chunk struct {
	Index int
	Start int // inclusive sample offset
	End   int // exclusive sample offset
	// AtSilence reports whether End was snapped to a detected silence
	// boundary rather than forced by the length cap or the buffer end.
	AtSilence bool
}

// Samples returns the chunk's sample range as a view into buf.
func (c Chunk) Samples(buf *Buffer) []int16 { return buf.Slice(c.Start, c.End) }

// Duration returns the chunk's playback duration within buf.
func (c Chunk) Duration(buf *Buffer) time.Duration {
	frames := (c.End - c.Start) / buf.Channels
	return time.Duration(frames) * time.Second / time.Duration(buf.SampleRate)
}

// ChunkerOptions control silence-aware splitting.
type ChunkerOptions struct {
	// MaxChunkDuration caps each chunk; the default matches the 3 minute
	// ceiling used for external transcription uploads.
	MaxChunkDuration time.Duration
	// MinSilence is the minimum quiet gap that separates two non-silent
	// intervals.
	MinSilence time.Duration
	// SilenceThreshold is the RMS amplitude below which a frame counts as
	// silent.
	SilenceThreshold int16
	// FrameDuration is the RMS analysis frame length.
	FrameDuration time.Duration
}

// DefaultChunkerOptions mirror the upstream splitter: 3 minute chunks,
// 1 second silence gaps.
func DefaultChunkerOptions() ChunkerOptions {
	return ChunkerOptions{
		MaxChunkDuration: 3 * time.Minute,
		MinSilence:       time.Second,
		SilenceThreshold: 500,
		FrameDuration:    10 * time.Millisecond,
	}
}

type interval struct {
	start, end int // sample offsets relative to the scanned window
}

// SplitOnSilence divides buf into ordered, contiguous, non-overlapping
// chunks covering [0, buf.Len()) exactly once. Starting at offset 0 it
// proposes a candidate end at offset+MaxChunkDuration; when the candidate
// falls strictly inside the buffer, the window is scanned for non-silent
// intervals and the end snaps to the end of the last one found, so the cut
// lands in silence instead of mid-word. A window with no detected speech
// keeps the full-length candidate. A buffer shorter than MaxChunkDuration
// yields exactly one chunk.
func SplitOnSilence(buf *Buffer, opts ChunkerOptions) ([]Chunk, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxChunkDuration <= 0 {
		opts.MaxChunkDuration = DefaultChunkerOptions().MaxChunkDuration
	}
	if opts.MinSilence <= 0 {
		opts.MinSilence = DefaultChunkerOptions().MinSilence
	}
	if opts.FrameDuration <= 0 {
		opts.FrameDuration = DefaultChunkerOptions().FrameDuration
	}

	maxSamples := buf.samplesFor(opts.MaxChunkDuration)
	if maxSamples < buf.Channels {
		maxSamples = buf.Channels
	}
	frameSamples := buf.samplesFor(opts.FrameDuration)
	if frameSamples < buf.Channels {
		frameSamples = buf.Channels
	}
	minSilenceFrames := int(opts.MinSilence / opts.FrameDuration)
	if minSilenceFrames < 1 {
		minSilenceFrames = 1
	}

	total := buf.Len()
	var chunks []Chunk
	offset := 0
	for offset < total {
		end := offset + maxSamples
		if end > total {
			end = total
		}
		atSilence := false
		if end < total {
			window := buf.Slice(offset, end)
			nonSilent := detectNonSilent(window, frameSamples, minSilenceFrames, opts.SilenceThreshold)
			if len(nonSilent) > 0 {
				last := nonSilent[len(nonSilent)-1]
				snapped := offset + last.end
				// Snapping to the window end is not a silence cut, and a
				// snap that makes no progress would loop forever.
				if snapped < end && snapped > offset {
					end = snapped
					atSilence = true
				}
			}
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Start:     offset,
			End:       end,
			AtSilence: atSilence,
		})
		offset = end
	}

	logging.Debugw("audio split complete",
		"chunks", len(chunks),
		"samples", total,
		"max_chunk_ms", opts.MaxChunkDuration.Milliseconds())
	return chunks, nil
}

// detectNonSilent returns intervals of above-threshold audio inside window,
// where two loud stretches separated by fewer than minSilenceFrames quiet
// frames merge into one interval. Interval offsets are relative to window.
func detectNonSilent(window []int16, frameSamples, minSilenceFrames int, threshold int16) []interval {
	numFrames := len(window) / frameSamples
	if numFrames == 0 {
		if frameRMS(window) >= float64(threshold) {
			return []interval{{start: 0, end: len(window)}}
		}
		return nil
	}

	loud := make([]bool, numFrames)
	for i := 0; i < numFrames; i++ {
		frame := window[i*frameSamples : (i+1)*frameSamples]
		loud[i] = frameRMS(frame) >= float64(threshold)
	}
	// The tail shorter than a frame is folded into the final frame's verdict.
	tail := len(window) - numFrames*frameSamples
	if tail > 0 && frameRMS(window[numFrames*frameSamples:]) >= float64(threshold) {
		loud[numFrames-1] = true
	}

	var out []interval
	i := 0
	for i < numFrames {
		if !loud[i] {
			i++
			continue
		}
		start := i
		end := i + 1
		silentRun := 0
		for j := i + 1; j < numFrames; j++ {
			if loud[j] {
				end = j + 1
				silentRun = 0
				continue
			}
			silentRun++
			if silentRun >= minSilenceFrames {
				break
			}
		}
		endSample := end * frameSamples
		if end == numFrames {
			endSample = len(window)
		}
		out = append(out, interval{start: start * frameSamples, end: endSample})
		i = end + silentRun
	}
	return out
}

func frameRMS(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range frame {
		v := float64(s)
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(frame)))
}

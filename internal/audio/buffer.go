package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedBuffer is returned when a buffer cannot be chunked (no
// samples, or an invalid sample rate / channel count). It is fatal for
// the whole run.
var ErrMalformedBuffer = errors.New("malformed audio buffer")

// Buffer holds captured PCM-16 audio. It is immutable once constructed;
// chunks reference sub-ranges of Samples and never copy or mutate it.
type Buffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// NewBuffer wraps samples in a Buffer after validating the format.
func NewBuffer(samples []int16, sampleRate, channels int) (*Buffer, error) {
	b := &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the buffer is usable by the chunker.
func (b *Buffer) Validate() error {
	if b == nil || len(b.Samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrMalformedBuffer)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrMalformedBuffer, b.SampleRate)
	}
	if b.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrMalformedBuffer, b.Channels)
	}
	return nil
}

// Len returns the number of samples (all channels interleaved).
func (b *Buffer) Len() int { return len(b.Samples) }

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return time.Duration(frames) * time.Second / time.Duration(b.SampleRate)
}

// Slice returns the sample range [start, end) as a view into the buffer.
func (b *Buffer) Slice(start, end int) []int16 {
	return b.Samples[start:end]
}

// samplesFor converts a duration into an interleaved sample count, rounding
// down to a whole frame so slices never split a multi-channel frame.
func (b *Buffer) samplesFor(d time.Duration) int {
	frames := int(d * time.Duration(b.SampleRate) / time.Second)
	return frames * b.Channels
}

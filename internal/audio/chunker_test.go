package audio

import (
	"testing"
	"time"
)

// testOpts use a 1 kHz sample rate so durations map to sample counts
// directly: 1 second == 1000 samples, one 10ms frame == 10 samples.
func testOpts() ChunkerOptions {
	return ChunkerOptions{
		MaxChunkDuration: time.Second,
		MinSilence:       50 * time.Millisecond,
		SilenceThreshold: 500,
		FrameDuration:    10 * time.Millisecond,
	}
}

func constBuffer(t *testing.T, n int, amp int16) *Buffer {
	t.Helper()
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = amp
	}
	buf, err := NewBuffer(samples, 1000, 1)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	return buf
}

func TestSplitCoversBufferExactly(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want int // minimum chunk count: ceil(n / maxSamples)
	}{
		{"shorter than cap", 600, 1},
		{"exactly the cap", 1000, 1},
		{"two and a half caps", 2500, 3},
		{"single sample", 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := constBuffer(t, tc.n, 5000)
			chunks, err := SplitOnSilence(buf, testOpts())
			if err != nil {
				t.Fatalf("SplitOnSilence: %v", err)
			}
			if len(chunks) < tc.want {
				t.Errorf("chunk count = %d, want >= %d", len(chunks), tc.want)
			}
			if chunks[0].Start != 0 {
				t.Errorf("first chunk starts at %d, want 0", chunks[0].Start)
			}
			if chunks[len(chunks)-1].End != tc.n {
				t.Errorf("last chunk ends at %d, want %d", chunks[len(chunks)-1].End, tc.n)
			}
			for i := 1; i < len(chunks); i++ {
				if chunks[i].Start != chunks[i-1].End {
					t.Errorf("chunk %d starts at %d, previous ends at %d", i, chunks[i].Start, chunks[i-1].End)
				}
				if chunks[i].Index != i {
					t.Errorf("chunk %d carries index %d", i, chunks[i].Index)
				}
			}
		})
	}
}

func TestSplitReconstructsBuffer(t *testing.T) {
	buf := constBuffer(t, 2500, 5000)
	// Vary the samples so reconstruction mismatches are detectable.
	for i := range buf.Samples {
		buf.Samples[i] = int16(i % 3000)
	}
	chunks, err := SplitOnSilence(buf, testOpts())
	if err != nil {
		t.Fatalf("SplitOnSilence: %v", err)
	}
	var rebuilt []int16
	for _, c := range chunks {
		rebuilt = append(rebuilt, c.Samples(buf)...)
	}
	if len(rebuilt) != buf.Len() {
		t.Fatalf("reconstructed %d samples, want %d", len(rebuilt), buf.Len())
	}
	for i := range rebuilt {
		if rebuilt[i] != buf.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, rebuilt[i], buf.Samples[i])
		}
	}
}

func TestSplitSnapsToSilence(t *testing.T) {
	// 700 samples of speech then 800 of silence. The first candidate window
	// is [0, 1000); the last non-silent interval ends at 700, so the cut
	// snaps there instead of landing mid-window.
	samples := make([]int16, 1500)
	for i := 0; i < 700; i++ {
		samples[i] = 5000
	}
	buf, err := NewBuffer(samples, 1000, 1)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	chunks, err := SplitOnSilence(buf, testOpts())
	if err != nil {
		t.Fatalf("SplitOnSilence: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("chunk count = %d, want 2", len(chunks))
	}
	if chunks[0].End != 700 {
		t.Errorf("first cut at %d, want 700", chunks[0].End)
	}
	if !chunks[0].AtSilence {
		t.Error("first chunk should be flagged as a silence cut")
	}
	if chunks[1].AtSilence {
		t.Error("final chunk ends at the buffer, not at a silence cut")
	}
}

func TestSplitWithoutSafeCutKeepsCandidate(t *testing.T) {
	// Continuous speech: no silence gap exists inside the window, so the
	// full-length candidate is kept and the cut is forced by the cap.
	buf := constBuffer(t, 1800, 5000)
	chunks, err := SplitOnSilence(buf, testOpts())
	if err != nil {
		t.Fatalf("SplitOnSilence: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("chunk count = %d, want 2", len(chunks))
	}
	if chunks[0].End != 1000 {
		t.Errorf("first cut at %d, want 1000 (the cap)", chunks[0].End)
	}
	if chunks[0].AtSilence {
		t.Error("forced cap cut must not be flagged as silence")
	}
}

func TestSplitAllSilenceKeepsCandidate(t *testing.T) {
	buf := constBuffer(t, 1500, 0)
	chunks, err := SplitOnSilence(buf, testOpts())
	if err != nil {
		t.Fatalf("SplitOnSilence: %v", err)
	}
	if chunks[0].End != 1000 {
		t.Errorf("first cut at %d, want 1000", chunks[0].End)
	}
}

func TestSplitShortBufferSingleChunk(t *testing.T) {
	buf := constBuffer(t, 250, 5000)
	chunks, err := SplitOnSilence(buf, testOpts())
	if err != nil {
		t.Fatalf("SplitOnSilence: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunk count = %d, want 1", len(chunks))
	}
	if chunks[0].Start != 0 || chunks[0].End != 250 {
		t.Errorf("chunk spans [%d, %d), want [0, 250)", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitRejectsMalformedBuffer(t *testing.T) {
	if _, err := SplitOnSilence(&Buffer{SampleRate: 1000, Channels: 1}, testOpts()); err == nil {
		t.Error("expected error for empty buffer")
	}
	if _, err := SplitOnSilence(&Buffer{Samples: []int16{1}, Channels: 1}, testOpts()); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

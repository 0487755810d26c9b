package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voice-notes-lab/internal/logging"
)

// ErrTranscription marks a failed speech-to-text call. It is chunk-local:
// the stitcher records a gap and continues with the remaining chunks.
var ErrTranscription = errors.New("transcription failed")

// Transcriber converts one audio file into text. Implementations wrap an
// external speech-to-text collaborator; no retry contract exists beyond the
// stitcher's skip-on-failure policy.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// TranscriberFunc adapts a function to the Transcriber interface.
type TranscriberFunc func(ctx context.Context, audioPath string) (string, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f(ctx, audioPath)
}

// OpenAITranscriber sends audio files to the OpenAI transcription endpoint.
type OpenAITranscriber struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAITranscriber builds a whisper-backed transcriber. An empty model
// selects whisper-1; timeout bounds each call and maps a deadline hit to
// the same skip handling as a hard collaborator error.
func NewOpenAITranscriber(apiKey, model string, timeout time.Duration) *OpenAITranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OpenAITranscriber{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// NewOpenAITranscriberWithClient builds a transcriber around an existing
// client, letting tests point it at a local test server.
func NewOpenAITranscriberWithClient(client *openai.Client, model string, timeout time.Duration) *OpenAITranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OpenAITranscriber{client: client, model: model, timeout: timeout}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	resp, err := t.client.CreateTranscription(reqCtx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	logging.Debugw("transcription response received",
		"path", audioPath,
		"latency_ms", time.Since(start).Milliseconds(),
		"text_len", len(resp.Text))
	return strings.TrimSpace(resp.Text), nil
}

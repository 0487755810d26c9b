package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func testWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, []byte("RIFFfakewavpayload"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func transcriberFor(srv *httptest.Server) *OpenAITranscriber {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewOpenAITranscriberWithClient(openai.NewClientWithConfig(cfg), "", time.Second)
}

func TestOpenAITranscriberTrimsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("model"); got != openai.Whisper1 {
			t.Errorf("model = %q, want %q", got, openai.Whisper1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  hello from the test server  "}`))
	}))
	defer srv.Close()

	got, err := transcriberFor(srv).Transcribe(context.Background(), testWAV(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "hello from the test server" {
		t.Errorf("text = %q", got)
	}
}

func TestOpenAITranscriberServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := transcriberFor(srv).Transcribe(context.Background(), testWAV(t))
	if !errors.Is(err, ErrTranscription) {
		t.Errorf("err = %v, want ErrTranscription", err)
	}
}

func TestOpenAITranscriberMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"text": "unreachable"}`))
	}))
	defer srv.Close()

	if _, err := transcriberFor(srv).Transcribe(context.Background(), "/does/not/exist.wav"); !errors.Is(err, ErrTranscription) {
		t.Errorf("err = %v, want ErrTranscription", err)
	}
}

package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/voice-notes-lab/internal/logging"
)

// DownloadAudio fetches the audio track of a video URL as WAV using yt-dlp
// and returns the downloaded file path and the video title. The file is
// named after the video ID so titles with odd characters never produce
// unusable paths. Any failure here aborts the run before the pipeline
// starts.
func DownloadAudio(ctx context.Context, url, dir string) (path, title string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("download dir: %w", err)
	}
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--no-playlist",
		"-x", "--audio-format", "wav",
		"-o", dir+"/%(id)s.%(ext)s",
		"--no-simulate",
		"--print", "after_move:filepath",
		"--print", "title",
		url,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logging.Errorw("yt-dlp failed", "url", url, "err", err, "stderr", truncate(stderr.String(), 400))
		return "", "", fmt.Errorf("yt-dlp: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) < 1 || lines[0] == "" {
		return "", "", fmt.Errorf("yt-dlp: no output path reported")
	}
	path = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		title = strings.TrimSpace(lines[1])
	}
	logging.Infow("audio downloaded", "path", path, "title", title)
	return path, title, nil
}

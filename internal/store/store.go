package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/voice-notes-lab/internal/logging"
	"github.com/voice-notes-lab/internal/metrics"
)

var (
	totalWordsRe  = regexp.MustCompile(`^Total words: \d+$`)
	dateHeaderRe  = regexp.MustCompile(`^\[[A-Za-z]+, [A-Za-z]+ \d{2}, \d{4}\]$`)
	monthHeaderRe = regexp.MustCompile(`^\[Month: (\w+) \| Count: (\d+)\]$`)
)

// Store merges transcription entries into durable, append-only log files:
// a weekly log deduplicated by date header, and per-subject logs counted by
// month header. Each operation is a whole-file read-merge-rewrite; the
// rewrite is atomic, but concurrent writers to the same file are unguarded;
// single-writer usage is assumed.
type Store struct {
	dir     string
	ext     string
	fs      FS
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithFS replaces the filesystem, letting tests run in memory.
func WithFS(fs FS) Option { return func(s *Store) { s.fs = fs } }

// WithClock replaces the time source used for headers and file names.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithExt sets the log file extension (default "txt").
func WithExt(ext string) Option {
	return func(s *Store) { s.ext = strings.TrimPrefix(ext, ".") }
}

// WithMetrics wires merge counters.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Store) { s.metrics = m } }

// New returns a Store rooted at dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, ext: "txt", fs: osFS{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AppendWeekly merges text into the current ISO week's log file under a
// date header for today. Running it twice the same day replaces today's
// entry instead of duplicating it; entries for other days are preserved
// verbatim and in order. The file is prefixed with a running total word
// count and rewritten as a whole.
func (s *Store) AppendWeekly(text string) (string, error) {
	now := s.now()
	isoYear, isoWeek := now.ISOWeek()
	name := fmt.Sprintf("w%d_%s_%d.%s", isoWeek, now.Month().String(), isoYear, s.ext)
	path := filepath.Join(s.dir, name)

	existing, err := s.read(path)
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf("[%s]", now.Format("Monday, January 02, 2006"))
	merged := mergeWeekly(existing, header, text)
	content := fmt.Sprintf("Total words: %d\n\n%s", len(strings.Fields(merged)), merged)
	if err := s.fs.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write weekly log: %w", err)
	}
	if s.metrics != nil {
		s.metrics.StoreMerges.WithLabelValues("weekly").Inc()
	}
	logging.Infow("weekly log updated", "path", path, "header", header)
	return path, nil
}

// AppendSubject merges text into the subject's log file under a month
// header carrying a running count for the current month. Every call is a
// new entry by design: the count increments and a new block is prepended;
// only the current month's header line is replaced, earlier months remain
// appended below undifferentiated.
func (s *Store) AppendSubject(text, subject string) (string, error) {
	now := s.now()
	name := fmt.Sprintf("%s.%s", strings.ToLower(subject), s.ext)
	path := filepath.Join(s.dir, name)

	existing, err := s.read(path)
	if err != nil {
		return "", err
	}
	content := mergeSubject(existing, now.Month().String(), text)
	if err := s.fs.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write subject log: %w", err)
	}
	if s.metrics != nil {
		s.metrics.StoreMerges.WithLabelValues("subject").Inc()
	}
	logging.Infow("subject log updated", "path", path, "subject", subject)
	return path, nil
}

func (s *Store) read(path string) (string, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read log: %w", err)
	}
	return string(data), nil
}

// mergeWeekly computes the new weekly file body (without the total-words
// prefix). A well-formed existing file has its total-words header and blank
// separator stripped and any prior entry under header removed; anything
// else is treated as legacy content and preserved verbatim below the new
// entry, never discarded.
func mergeWeekly(existing, header, text string) string {
	newBlock := header + "\n" + text + "\n\n"
	if existing == "" {
		return newBlock
	}
	lines := strings.Split(existing, "\n")
	if !totalWordsRe.MatchString(lines[0]) {
		logging.Warnw("weekly log missing total-words header, keeping content as legacy text")
		return newBlock + existing
	}
	body := lines[1:]
	if len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}
	return newBlock + strings.Join(removeEntry(body, header), "\n")
}

// removeEntry drops the entry introduced by header: the header line and
// every following line up to (not including) the next date header. All
// other lines pass through untouched.
func removeEntry(lines []string, header string) []string {
	out := make([]string, 0, len(lines))
	skip := false
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if dateHeaderRe.MatchString(t) {
			skip = t == header
		}
		if !skip {
			out = append(out, line)
		}
	}
	return out
}

// mergeSubject computes the new subject file content. When the file's first
// line is a month header for the current month, its count continues and the
// header line (only the line) is replaced; a different month or an
// unparsable first line resets the count to 1 and leaves the existing
// content below as-is.
func mergeSubject(existing, month, text string) string {
	count := 0
	remainder := existing
	if existing != "" {
		firstLine := existing
		if idx := strings.Index(existing, "\n"); idx >= 0 {
			firstLine = existing[:idx]
		}
		if m := monthHeaderRe.FindStringSubmatch(firstLine); m != nil && strings.EqualFold(m[1], month) {
			count, _ = strconv.Atoi(m[2])
			rest := ""
			if idx := strings.Index(existing, "\n"); idx >= 0 {
				rest = existing[idx+1:]
			}
			remainder = strings.TrimLeft(rest, " \t\r\n")
		}
	}
	count++
	header := fmt.Sprintf("[Month: %s | Count: %d]", month, count)
	return header + "\n" + text + "\n\n" + remainder
}

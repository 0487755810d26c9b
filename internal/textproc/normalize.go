package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	fillerRe = regexp.MustCompile(`(?i)\b(um|uh|like|you know|i mean)\b`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// SegmentSentences splits text on '.', '?' and '!', keeping the delimiter
// attached to the preceding text. Empty segments are discarded and each
// sentence is trimmed of surrounding whitespace.
func SegmentSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	// Trailing text without a closing delimiter still counts as a sentence.
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// GroupParagraphs partitions sentences into consecutive groups of size
// (the final group may be shorter), joining each group with single spaces.
// A non-positive size defaults to 3.
func GroupParagraphs(sentences []string, size int) []string {
	if size <= 0 {
		size = 3
	}
	var out []string
	for i := 0; i < len(sentences); i += size {
		end := i + size
		if end > len(sentences) {
			end = len(sentences)
		}
		out = append(out, strings.Join(sentences[i:end], " "))
	}
	return out
}

// Clean strips filler words from each non-empty line of a paragraph,
// collapses repeated whitespace, and capitalizes the first alphabetic
// character of the line. Bullet lines beginning with "* " keep the marker
// and capitalize the first character after it. Clean is deterministic and
// idempotent.
func Clean(paragraph string) string {
	lines := strings.Split(paragraph, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		bullet := strings.HasPrefix(line, "* ")
		if bullet {
			line = line[2:]
		}
		// Removing a filler can splice a new one together across the gap
		// ("i uh mean" leaves "i mean"), so strip and collapse until the
		// line stops changing. Every pass strictly shortens the line, so
		// the loop terminates.
		for {
			next := strings.TrimSpace(spaceRe.ReplaceAllString(fillerRe.ReplaceAllString(line, ""), " "))
			if next == line {
				break
			}
			line = next
		}
		if line == "" {
			continue
		}
		line = capitalizeFirstLetter(line)
		if bullet {
			line = "* " + line
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

// capitalizeFirstLetter upper-cases the first alphabetic rune, leaving any
// leading digits or punctuation alone.
func capitalizeFirstLetter(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			upper := unicode.ToUpper(r)
			if upper == r {
				return s
			}
			return s[:i] + string(upper) + s[i+len(string(r)):]
		}
	}
	return s
}

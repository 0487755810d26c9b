package textproc

import "strings"

// DefaultKeywords is the priority-ordered subject list used when no
// configuration overrides it.
var DefaultKeywords = []string{"ai", "biology", "reading note"}

// Classify inspects the first five and last five whitespace-separated
// tokens of raw (lower-cased) and returns the first keyword, in
// caller-supplied priority order, appearing as a substring of either
// window. The keyword list stays an ordered slice so ties break
// deterministically. The returned subject is lower-cased; ok is false when
// nothing matches or raw is empty.
func Classify(raw string, keywords []string) (subject string, ok bool) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", false
	}
	head := words
	if len(head) > 5 {
		head = head[:5]
	}
	tail := words
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	first := strings.ToLower(strings.Join(head, " "))
	last := strings.ToLower(strings.Join(tail, " "))
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if k == "" {
			continue
		}
		if strings.Contains(first, k) || strings.Contains(last, k) {
			return k, true
		}
	}
	return "", false
}

package transcript

import (
	"strings"
	"time"
	"unicode"
)

// MergeWindow is the maximum gap between two fragments of the same role for
// them to be treated as one growing utterance. It happens to share its value
// with the post-call overlay delay in the session package, but the two are
// unrelated heuristics and must stay independently tunable.
const MergeWindow = 3 * time.Second

// Message is one attributed utterance. Role is opaque text taken from the
// voice platform (e.g. "user", "assistant"); Timestamp is the time of the
// most recent update, not creation.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Append applies one incoming transcript fragment to the sequence.
//
// The platform re-sends a growing partial transcript for the utterance in
// progress, so a fragment with the same role arriving within MergeWindow of
// the last message replaces that message's text outright (no concatenation)
// and refreshes its timestamp. Anything else starts a new message. Fragments
// that are empty after trimming are discarded.
//
// Only the last element is ever replaced; earlier elements are immutable.
// The input slice is not mutated.
func Append(msgs []Message, role, rawText string, now time.Time) []Message {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return msgs
	}

	if n := len(msgs); n > 0 {
		last := msgs[n-1]
		if last.Role == role && now.Sub(last.Timestamp) < MergeWindow {
			out := append([]Message(nil), msgs...)
			out[n-1] = Message{Role: role, Text: text, Timestamp: now}
			return out
		}
	}

	return append(msgs, Message{Role: role, Text: text, Timestamp: now})
}

// Deduplicate removes exact duplicate utterances from a finished transcript.
//
// Each message is keyed by its role plus a normalized form of its text
// (lower-cased, every character that is not an ASCII letter, digit, or
// whitespace removed, then trimmed). The first occurrence of a key wins and
// keeps its original text; later occurrences are dropped. Order is
// preserved, and the pass is idempotent. Near-duplicates with different
// underlying words are left alone.
func Deduplicate(msgs []Message) []Message {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]Message, 0, len(msgs))

	for _, m := range msgs {
		key := m.Role + "|" + normalizeText(m.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}

	return out
}

func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

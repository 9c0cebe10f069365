package transcript

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func TestAppendMergesFragmentsWithinWindow(t *testing.T) {
	var msgs []Message
	msgs = Append(msgs, "user", "hello", t0)
	msgs = Append(msgs, "user", "hello there", t0.Add(1*time.Second))
	msgs = Append(msgs, "user", "hello there, I need help", t0.Add(2*time.Second))

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "hello there, I need help" {
		t.Fatalf("expected last fragment's text, got %q", msgs[0].Text)
	}
	if !msgs[0].Timestamp.Equal(t0.Add(2 * time.Second)) {
		t.Fatalf("expected timestamp refreshed to latest fragment, got %v", msgs[0].Timestamp)
	}
}

func TestAppendStartsNewMessageAfterWindow(t *testing.T) {
	var msgs []Message
	msgs = Append(msgs, "user", "first thought", t0)
	msgs = Append(msgs, "user", "second thought", t0.Add(MergeWindow))

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages at exactly the window boundary, got %d", len(msgs))
	}
	if msgs[0].Text != "first thought" || msgs[1].Text != "second thought" {
		t.Fatalf("unexpected texts: %q, %q", msgs[0].Text, msgs[1].Text)
	}
}

func TestAppendRoleChangeAlwaysStartsNewMessage(t *testing.T) {
	var msgs []Message
	msgs = Append(msgs, "user", "hello", t0)
	msgs = Append(msgs, "assistant", "hi, how can I help?", t0.Add(100*time.Millisecond))

	if len(msgs) != 2 {
		t.Fatalf("expected role change to append, got %d messages", len(msgs))
	}
	if msgs[0].Text != "hello" {
		t.Fatalf("earlier message mutated: %q", msgs[0].Text)
	}
}

func TestAppendBlankFragmentIsNoOp(t *testing.T) {
	msgs := Append(nil, "user", "hello", t0)

	for _, raw := range []string{"", "   ", "\n\t "} {
		got := Append(msgs, "user", raw, t0.Add(time.Second))
		if len(got) != len(msgs) {
			t.Fatalf("expected blank fragment %q to be a no-op, got %d messages", raw, len(got))
		}
	}
}

func TestAppendDoesNotMutateInput(t *testing.T) {
	msgs := Append(nil, "user", "hello", t0)
	_ = Append(msgs, "user", "hello again", t0.Add(time.Second))

	if msgs[0].Text != "hello" {
		t.Fatalf("merge mutated caller's slice: %q", msgs[0].Text)
	}
}

func TestDeduplicateFirstOccurrenceWins(t *testing.T) {
	msgs := []Message{
		{Role: "user", Text: "Hi!", Timestamp: t0},
		{Role: "assistant", Text: "Hello", Timestamp: t0.Add(time.Second)},
		{Role: "user", Text: "hi", Timestamp: t0.Add(2 * time.Second)},
	}

	got := Deduplicate(msgs)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Text != "Hi!" || got[0].Role != "user" {
		t.Fatalf("expected first occurrence kept verbatim, got %+v", got[0])
	}
	if got[1].Role != "assistant" {
		t.Fatalf("expected order preserved, got %+v", got[1])
	}
}

func TestDeduplicateKeepsDistinctUtterances(t *testing.T) {
	msgs := []Message{
		{Role: "user", Text: "my account is locked"},
		{Role: "user", Text: "my account is locked out"},
		{Role: "assistant", Text: "my account is locked"},
	}

	got := Deduplicate(msgs)
	if len(got) != 3 {
		t.Fatalf("expected near-duplicates and cross-role duplicates kept, got %d", len(got))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	msgs := []Message{
		{Role: "user", Text: "Hello, world!"},
		{Role: "user", Text: "hello world"},
		{Role: "assistant", Text: "Hi."},
	}

	once := Deduplicate(msgs)
	twice := Deduplicate(once)

	if len(once) != len(twice) {
		t.Fatalf("dedup not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("dedup not idempotent at %d: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestDeduplicateEmptyTranscript(t *testing.T) {
	got := Deduplicate(nil)
	if len(got) != 0 {
		t.Fatalf("expected empty output for empty input, got %d", len(got))
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello, World!", "hello world"},
		{"  spaced   out  ", "spaced   out"},
		{"order #42?", "order 42"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := normalizeText(tc.in); got != tc.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

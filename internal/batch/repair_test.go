package batch

import "testing"

func TestParseModelTextDirect(t *testing.T) {
	parsed, note, ok := parseModelText(`{"label":"joy"}`)
	if !ok {
		t.Fatal("expected direct parse to succeed")
	}
	if note != "" {
		t.Fatalf("direct parse should carry no note, got %q", note)
	}
	if parsed["label"] != "joy" {
		t.Fatalf("unexpected label: %#v", parsed["label"])
	}
}

func TestParseModelTextFenceStrip(t *testing.T) {
	parsed, note, ok := parseModelText("```json\n{\"label\":\"joy\"}\n```")
	if !ok {
		t.Fatal("expected fenced parse to succeed")
	}
	// Fence stripping followed by a clean parse is not a repair.
	if note != "" {
		t.Fatalf("fence strip should carry no note, got %q", note)
	}
	if parsed["label"] != "joy" {
		t.Fatalf("unexpected label: %#v", parsed["label"])
	}
}

func TestParseModelTextFenceWithoutTag(t *testing.T) {
	_, _, ok := parseModelText("```\n{\"label\":\"anger\"}\n```")
	if !ok {
		t.Fatal("untagged fence should still strip")
	}
}

func TestParseModelTextTruncationRepair(t *testing.T) {
	parsed, note, ok := parseModelText(`{"label":"disapprov`)
	if !ok {
		t.Fatal("expected truncation repair to fire")
	}
	if note != noteTruncatedRepair {
		t.Fatalf("note = %q, want %q", note, noteTruncatedRepair)
	}
	if parsed["label"] != "disapprov" {
		t.Fatalf("unexpected repaired label: %#v", parsed["label"])
	}
}

func TestParseModelTextKeyValueRepair(t *testing.T) {
	cases := []string{
		`label: disapproval`,
		`Label = "disapproval"`,
		`  label:disapproval  `,
	}
	for _, in := range cases {
		parsed, note, ok := parseModelText(in)
		if !ok {
			t.Fatalf("expected key-value repair for %q", in)
		}
		if note != noteKeyValueRepair {
			t.Fatalf("%q: note = %q, want %q", in, note, noteKeyValueRepair)
		}
		if parsed["label"] != "disapproval" {
			t.Fatalf("%q: unexpected label %#v", in, parsed["label"])
		}
	}
}

func TestParseModelTextUnrecoverable(t *testing.T) {
	for _, in := range []string{
		"complete nonsense",
		`{"labe`,
		"",
	} {
		if _, _, ok := parseModelText(in); ok {
			t.Fatalf("expected %q to be unrecoverable", in)
		}
	}
}

func TestParseModelTextDoesNotRepairMultiLabelTruncation(t *testing.T) {
	// The truncation repair is intentionally limited to the single-label
	// object shape; a partially written array stays unrecoverable.
	if _, _, ok := parseModelText(`{"label":["joy","ang`); ok {
		t.Fatal("truncated array should not be repaired")
	}
}

func TestRawSnippet(t *testing.T) {
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'x'
	}
	if got := rawSnippet(string(long), 80); len([]rune(got)) != 80 {
		t.Fatalf("snippet length = %d, want 80", len([]rune(got)))
	}
	if got := rawSnippet("short", 80); got != "short" {
		t.Fatalf("short text should pass through, got %q", got)
	}
}

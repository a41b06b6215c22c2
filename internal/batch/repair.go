package batch

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Repair notes attached to rows recovered from malformed model output.
const (
	noteTruncatedRepair = "Truncated JSON repaired"
	noteKeyValueRepair  = "Non-JSON label recovered"
)

var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")

	// Deliberately narrow: only the recognizable single-label truncation
	// shape is repaired. Guessing labels out of arbitrary garbage would
	// fabricate results.
	truncatedLabelRe = regexp.MustCompile(`^\{"label":"([^"}` + "\n" + `]+)`)
	kvLabelRe        = regexp.MustCompile(`(?i)^\s*label\s*[:=]\s*"?([^"}` + "\n" + `]+)"?\s*$`)
)

// parseModelText parses the model's textual output, attempting repairs in
// order: strip a markdown code fence and parse directly, then recover a
// truncated single-label object, then a loose "label: value" line. The note
// is non-empty only for the repair paths; a fence strip followed by a clean
// parse is not a repair. Returns ok=false when nothing usable was found.
func parseModelText(text string) (parsed map[string]any, note string, ok bool) {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = fenceOpenRe.ReplaceAllString(t, "")
		t = fenceCloseRe.ReplaceAllString(t, "")
	}

	if err := json.Unmarshal([]byte(t), &parsed); err == nil {
		return parsed, "", true
	}

	if m := truncatedLabelRe.FindStringSubmatch(t); m != nil {
		return map[string]any{"label": m[1]}, noteTruncatedRepair, true
	}
	if m := kvLabelRe.FindStringSubmatch(t); m != nil {
		return map[string]any{"label": m[1]}, noteKeyValueRepair, true
	}

	return nil, "", false
}

// rawSnippet returns the first n runes of the raw text for diagnostics.
func rawSnippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

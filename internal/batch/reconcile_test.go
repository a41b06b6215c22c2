package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// outputLine builds one provider output record with the given model text.
func outputLine(t *testing.T, customID, quote, text string) string {
	t.Helper()
	rec := map[string]any{
		"custom_id": customID,
		"response": map[string]any{
			"status_code": 200,
			"body": map[string]any{
				"output": []any{
					map[string]any{
						"content": []any{
							map[string]any{"type": "output_text", "text": text},
						},
					},
				},
				"metadata": map[string]string{"quote": quote},
			},
		},
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(raw)
}

func TestReconcileOutputSingleLabelRoundTrip(t *testing.T) {
	const n = 5
	var lines []string
	for i := 1; i <= n; i++ {
		lines = append(lines, outputLine(t,
			fmt.Sprintf("quote-%05d", i),
			fmt.Sprintf("quote text %d", i),
			`{"label":"joy"}`))
	}

	rows, failures := reconcileOutput([]byte(strings.Join(lines, "\n")), discardLogger())
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %d", len(failures))
	}
	if len(rows) != n {
		t.Fatalf("expected %d rows, got %d", n, len(rows))
	}
	for i, row := range rows {
		want := fmt.Sprintf("quote-%05d", i+1)
		if row.CorrelationID != want {
			t.Fatalf("row %d: correlation id %q, want %q", i, row.CorrelationID, want)
		}
		if row.Label != "joy" {
			t.Fatalf("row %d: label %q", i, row.Label)
		}
		if row.Quote != fmt.Sprintf("quote text %d", i+1) {
			t.Fatalf("row %d: quote %q", i, row.Quote)
		}
	}
}

func TestReconcileOutputMultiLabelExplode(t *testing.T) {
	line := outputLine(t, "quote-00001", "the quote", `{"label":["joy","anger","fear"]}`)

	rows, failures := reconcileOutput([]byte(line), discardLogger())
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %d", len(failures))
	}
	if len(rows) != 3 {
		t.Fatalf("explode law: expected 3 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.CorrelationID != "quote-00001" || row.Quote != "the quote" {
			t.Fatalf("exploded rows must share correlation id and quote: %+v", row)
		}
	}
	if rows[0].Label != "joy" || rows[1].Label != "anger" || rows[2].Label != "fear" {
		t.Fatalf("unexpected exploded labels: %+v", rows)
	}
}

func TestReconcileOutputExplodeDropsNullElements(t *testing.T) {
	line := outputLine(t, "quote-00001", "q", `{"label":["joy",null,""]}`)

	rows, _ := reconcileOutput([]byte(line), discardLogger())
	if len(rows) != 1 || rows[0].Label != "joy" {
		t.Fatalf("null/empty array elements must be dropped, got %+v", rows)
	}
}

func TestReconcileOutputPartialFailureIsolation(t *testing.T) {
	const n = 10
	var lines []string
	for i := 1; i <= n; i++ {
		text := `{"label":"joy"}`
		if i == 4 {
			text = "garbage that is not a label at all }{"
		}
		lines = append(lines, outputLine(t, fmt.Sprintf("quote-%05d", i), "q", text))
	}

	rows, failures := reconcileOutput([]byte(strings.Join(lines, "\n")), discardLogger())
	if len(rows) != n-1 {
		t.Fatalf("expected %d rows, got %d", n-1, len(rows))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].CorrelationID != "quote-00004" {
		t.Fatalf("wrong failure record: %+v", failures[0])
	}
}

func TestReconcileOutputTruncationRepair(t *testing.T) {
	line := outputLine(t, "quote-00001", "q", `{"label":"disapprov`)

	rows, failures := reconcileOutput([]byte(line), discardLogger())
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %+v", failures)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Label != "disapprov" {
		t.Fatalf("label = %q, want %q", rows[0].Label, "disapprov")
	}
	if rows[0].RepairNote != "Truncated JSON repaired" {
		t.Fatalf("repair note = %q", rows[0].RepairNote)
	}
}

func TestReconcileOutputFenceRepairHasNoNote(t *testing.T) {
	line := outputLine(t, "quote-00001", "q", "```json\n{\"label\":\"joy\"}\n```")

	rows, failures := reconcileOutput([]byte(line), discardLogger())
	if len(failures) != 0 || len(rows) != 1 {
		t.Fatalf("expected exactly 1 row, got %d rows / %d failures", len(rows), len(failures))
	}
	if rows[0].Label != "joy" {
		t.Fatalf("label = %q", rows[0].Label)
	}
	if rows[0].RepairNote != "" {
		t.Fatalf("fence strip must not carry a repair note, got %q", rows[0].RepairNote)
	}
}

func TestReconcileOutputFormatFailureSkippedSilently(t *testing.T) {
	// Missing text field entirely: a format failure, not a content failure.
	noText := `{"custom_id":"quote-00001","response":{"status_code":200,"body":{"output":[{"content":[{"type":"output_text"}]}],"metadata":{"quote":"q"}}}}`
	good := outputLine(t, "quote-00002", "q2", `{"label":"joy"}`)
	notJSON := "this line is not json at all"

	rows, failures := reconcileOutput([]byte(noText+"\n"+notJSON+"\n"+good), discardLogger())
	if len(failures) != 0 {
		t.Fatalf("format failures must not become failure rows, got %+v", failures)
	}
	if len(rows) != 1 || rows[0].CorrelationID != "quote-00002" {
		t.Fatalf("the remaining record must still reconcile, got %+v", rows)
	}
}

func TestReconcileOutputEmptyTextIsContentFailure(t *testing.T) {
	// Present-but-empty text goes through parsing and fails as content.
	line := outputLine(t, "quote-00001", "q", "")

	rows, failures := reconcileOutput([]byte(line), discardLogger())
	if len(rows) != 0 || len(failures) != 1 {
		t.Fatalf("empty text should be a content failure, got %d rows / %d failures", len(rows), len(failures))
	}
}

func TestReconcileOutputConfidenceCarriedVerbatim(t *testing.T) {
	withConf := outputLine(t, "quote-00001", "q", `{"label":"joy","confidence":0.0}`)
	withoutConf := outputLine(t, "quote-00002", "q", `{"label":"joy"}`)

	rows, _ := reconcileOutput([]byte(withConf+"\n"+withoutConf), discardLogger())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Zero is a valid confidence and must stay distinguishable from absent.
	if rows[0].Confidence == nil || *rows[0].Confidence != 0.0 {
		t.Fatalf("confidence 0.0 lost: %+v", rows[0])
	}
	if rows[1].Confidence != nil {
		t.Fatalf("absent confidence must stay absent: %+v", rows[1])
	}
}

func TestReconcileOutputFailureRowCarriesSnippet(t *testing.T) {
	long := strings.Repeat("garbage ", 40)
	line := outputLine(t, "quote-00001", "q", long)

	_, failures := reconcileOutput([]byte(line), discardLogger())
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if len([]rune(failures[0].RawText)) != rawSnippetLen {
		t.Fatalf("raw text snippet length = %d, want %d", len([]rune(failures[0].RawText)), rawSnippetLen)
	}
}

func TestReconcileOutputKeywordsExplode(t *testing.T) {
	line := outputLine(t, "text-00001", "src", `{"keywords":["alpha","beta"]}`)

	rows, failures := reconcileOutput([]byte(line), discardLogger())
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %+v", failures)
	}
	if len(rows) != 2 || rows[0].Label != "alpha" || rows[1].Label != "beta" {
		t.Fatalf("keyword explode failed: %+v", rows)
	}
}

func TestReconcileOutputParsedButUnusableShape(t *testing.T) {
	line := outputLine(t, "quote-00001", "q", `{"sentiment":"positive"}`)

	rows, failures := reconcileOutput([]byte(line), discardLogger())
	if len(rows) != 0 || len(failures) != 1 {
		t.Fatalf("object without label/keywords is a content failure, got %d rows / %d failures", len(rows), len(failures))
	}
}

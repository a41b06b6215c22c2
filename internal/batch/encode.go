package batch

import (
	"fmt"

	"github.com/jackzampolin/batchlabel/internal/labels"
	"github.com/jackzampolin/batchlabel/internal/schema"
)

const keywordSystemPrompt = "You are an expert at structured data extraction."

// EncodeBatch turns items into provider-ready requests for the given mode.
// Correlation ids are assigned as "<prefix>-<NNNNN>" from the item's 1-based
// position. Items pass through structurally unvalidated: empty or
// whitespace-only text is the provider's call to reject, not this layer's.
//
// An empty prefix falls back to a mode-appropriate default.
func EncodeBatch(set labels.Set, items []string, mode Mode, prefix string) ([]EncodedRequest, error) {
	if !mode.Valid() {
		return nil, &InvalidModeError{Mode: mode}
	}
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	if mode != ModeKeywordExtraction && set.Len() == 0 {
		return nil, ErrEmptyLabelSet
	}
	if prefix == "" {
		prefix = defaultPrefix(mode)
	}

	node, err := buildSchema(set, mode)
	if err != nil {
		return nil, err
	}
	// Compile once up front so a malformed schema fails the whole batch
	// before anything is uploaded.
	if _, err := schema.Compile(node); err != nil {
		return nil, fmt.Errorf("batch schema rejected: %w", err)
	}

	reqs := make([]EncodedRequest, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		id := fmt.Sprintf("%s-%05d", prefix, i+1)
		if _, ok := seen[id]; ok {
			return nil, &DuplicateCorrelationIDError{ID: id}
		}
		seen[id] = struct{}{}

		req := EncodedRequest{
			CorrelationID: id,
			ItemText:      item,
			Prompt:        buildPrompt(set, mode, item),
			Schema:        node,
		}
		if mode == ModeKeywordExtraction {
			req.SystemPrompt = keywordSystemPrompt
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

func defaultPrefix(mode Mode) string {
	if mode == ModeKeywordExtraction {
		return "text"
	}
	return "quote"
}

func buildSchema(set labels.Set, mode Mode) (*schema.Node, error) {
	switch mode {
	case ModeSingleLabel:
		return schema.SingleLabel(set.Values()), nil
	case ModeMultiLabel:
		return schema.MultiLabel(set.Values()), nil
	case ModeKeywordExtraction:
		return schema.KeywordExtraction(), nil
	}
	return nil, &InvalidModeError{Mode: mode}
}

func buildPrompt(set labels.Set, mode Mode, item string) string {
	switch mode {
	case ModeSingleLabel:
		return fmt.Sprintf("Label this quote with exactly one label from the allowed set.\nQuote: %s", item)
	case ModeMultiLabel:
		return fmt.Sprintf("Label this quote with labels from the allowed set only. \nAllowed: %s\nQuote: %s", set.Join(", "), item)
	default:
		return fmt.Sprintf("Extract the keywords from this text: %s", item)
	}
}

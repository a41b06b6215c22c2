// Package schema builds the strict JSON schemas sent to the provider's
// structured-output API. Every object node must carry
// additionalProperties:false, recursively, or the provider silently accepts
// extra fields and strict mode buys nothing.
package schema

// Node is a JSON Schema fragment. Only the keywords the classification
// schemas need are modeled; marshaling a Node yields the schema document
// embedded in each batch request.
type Node struct {
	Type                 string           `json:"type,omitempty"`
	Properties           map[string]*Node `json:"properties,omitempty"`
	PatternProperties    map[string]*Node `json:"patternProperties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	Items                *Node            `json:"items,omitempty"`
	Enum                 []string         `json:"enum,omitempty"`
	MinItems             int              `json:"minItems,omitempty"`
	Minimum              *float64         `json:"minimum,omitempty"`
	Maximum              *float64         `json:"maximum,omitempty"`
	AdditionalProperties *bool            `json:"additionalProperties,omitempty"`
	OneOf                []*Node          `json:"oneOf,omitempty"`
	AnyOf                []*Node          `json:"anyOf,omitempty"`
	AllOf                []*Node          `json:"allOf,omitempty"`
	Title                string           `json:"title,omitempty"`
}

// SingleLabel returns the schema for single-label classification: an object
// with exactly one required field "label" constrained to the allowed set.
func SingleLabel(allowed []string) *Node {
	n := &Node{
		Type:  "object",
		Title: "LabeledQuote",
		Properties: map[string]*Node{
			"label": {Type: "string", Enum: append([]string(nil), allowed...)},
		},
		Required: []string{"label"},
	}
	return ForbidAdditionalProps(n)
}

// MultiLabel returns the schema for multi-label classification: "label" is a
// non-empty array of enum-constrained strings.
func MultiLabel(allowed []string) *Node {
	n := &Node{
		Type:  "object",
		Title: "LabeledQuoteMulti",
		Properties: map[string]*Node{
			"label": {
				Type:     "array",
				MinItems: 1,
				Items:    &Node{Type: "string", Enum: append([]string(nil), allowed...)},
			},
		},
		Required: []string{"label"},
	}
	return ForbidAdditionalProps(n)
}

// KeywordExtraction returns the schema for free-text keyword extraction:
// "keywords" is a non-empty array of strings with no enum constraint.
func KeywordExtraction() *Node {
	n := &Node{
		Type:  "object",
		Title: "KeywordExtraction",
		Properties: map[string]*Node{
			"keywords": {
				Type:     "array",
				MinItems: 1,
				Items:    &Node{Type: "string"},
			},
		},
		Required: []string{"keywords"},
	}
	return ForbidAdditionalProps(n)
}

// ForbidAdditionalProps recursively sets additionalProperties:false on every
// object node, walking properties, patternProperties, array items, and
// oneOf/anyOf/allOf branches. Object nodes without a properties map get an
// explicit empty one so the emitted schema stays closed-world.
func ForbidAdditionalProps(n *Node) *Node {
	if n == nil {
		return nil
	}

	if n.Type == "object" {
		if n.Properties == nil {
			n.Properties = map[string]*Node{}
		}
		f := false
		n.AdditionalProperties = &f

		for _, p := range n.Properties {
			ForbidAdditionalProps(p)
		}
		for _, p := range n.PatternProperties {
			ForbidAdditionalProps(p)
		}
	}

	if n.Type == "array" && n.Items != nil {
		ForbidAdditionalProps(n.Items)
	}

	for _, branch := range [][]*Node{n.OneOf, n.AnyOf, n.AllOf} {
		for _, b := range branch {
			ForbidAdditionalProps(b)
		}
	}

	return n
}

// Name returns the schema name advertised to the provider's structured-output
// format, falling back to a generic name when the title is unset.
func (n *Node) Name() string {
	if n.Title != "" {
		return n.Title
	}
	return "Result"
}

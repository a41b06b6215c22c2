package schema

import (
	"encoding/json"
	"testing"
)

// walkObjects calls fn for every object-typed node reachable from n.
func walkObjects(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	if n.Type == "object" {
		fn(n)
	}
	for _, p := range n.Properties {
		walkObjects(p, fn)
	}
	for _, p := range n.PatternProperties {
		walkObjects(p, fn)
	}
	if n.Items != nil {
		walkObjects(n.Items, fn)
	}
	for _, branch := range [][]*Node{n.OneOf, n.AnyOf, n.AllOf} {
		for _, b := range branch {
			walkObjects(b, fn)
		}
	}
}

func assertClosed(t *testing.T, n *Node) {
	t.Helper()
	walkObjects(n, func(obj *Node) {
		if obj.AdditionalProperties == nil || *obj.AdditionalProperties {
			t.Fatalf("object node %q lacks additionalProperties:false", obj.Title)
		}
		if obj.Properties == nil {
			t.Fatalf("object node %q lacks an explicit properties map", obj.Title)
		}
	})
}

func TestSingleLabelSchemaIsClosed(t *testing.T) {
	assertClosed(t, SingleLabel([]string{"joy", "anger"}))
}

func TestMultiLabelSchemaIsClosed(t *testing.T) {
	assertClosed(t, MultiLabel([]string{"joy", "anger", "fear"}))
}

func TestKeywordExtractionSchemaIsClosed(t *testing.T) {
	assertClosed(t, KeywordExtraction())
}

func TestForbidAdditionalPropsWalksNestedBranches(t *testing.T) {
	n := &Node{
		Type: "object",
		Properties: map[string]*Node{
			"nested": {
				Type: "array",
				Items: &Node{
					Type: "object",
					Properties: map[string]*Node{
						"inner": {Type: "object"},
					},
				},
			},
		},
		OneOf: []*Node{
			{Type: "object"},
		},
		AnyOf: []*Node{
			{Type: "object", Properties: map[string]*Node{"x": {Type: "string"}}},
		},
		AllOf: []*Node{
			{Type: "object"},
		},
	}

	assertClosed(t, ForbidAdditionalProps(n))
}

func TestSingleLabelSchemaValidatesInstances(t *testing.T) {
	n := SingleLabel([]string{"joy", "anger"})

	if err := Validate(n, json.RawMessage(`{"label":"joy"}`)); err != nil {
		t.Fatalf("expected valid instance, got: %v", err)
	}
	if err := Validate(n, json.RawMessage(`{"label":"sadness"}`)); err == nil {
		t.Fatal("expected out-of-set label to be rejected")
	}
	if err := Validate(n, json.RawMessage(`{"label":"joy","extra":1}`)); err == nil {
		t.Fatal("expected extra property to be rejected")
	}
}

func TestMultiLabelSchemaRequiresNonEmptyArray(t *testing.T) {
	n := MultiLabel([]string{"joy", "anger"})

	if err := Validate(n, json.RawMessage(`{"label":["joy","anger"]}`)); err != nil {
		t.Fatalf("expected valid instance, got: %v", err)
	}
	if err := Validate(n, json.RawMessage(`{"label":[]}`)); err == nil {
		t.Fatal("expected empty label array to be rejected")
	}
}

func TestCompileRoundTripsThroughJSON(t *testing.T) {
	n := SingleLabel([]string{"a"})

	raw, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	if ap, ok := doc["additionalProperties"].(bool); !ok || ap {
		t.Fatalf("serialized schema must carry additionalProperties:false, got %#v", doc["additionalProperties"])
	}

	if _, err := Compile(n); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
}

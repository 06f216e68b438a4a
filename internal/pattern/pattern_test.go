package pattern

import (
	"strings"
	"testing"

	"treelisty-cli/internal/model"
)

func TestGetFallsBackToGeneric(t *testing.T) {
	if got := Get("sales"); got.Key != "sales" {
		t.Fatalf("sales: %+v", got)
	}
	if got := Get("no-such-pattern"); got.Key != "generic" {
		t.Fatalf("fallback: %+v", got)
	}
	if !Known("filesystem") || Known("no-such-pattern") {
		t.Fatalf("Known misbehaves")
	}
}

func TestKeysSortedAndComplete(t *testing.T) {
	keys := Keys()
	if len(keys) < 5 {
		t.Fatalf("catalog too small: %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("not sorted: %v", keys)
		}
	}
}

func TestValidateReportsUnknownFieldsOnly(t *testing.T) {
	tr := &model.Tree{
		Pattern: model.Pattern{Key: "sales"},
		Root: &model.Node{
			ID: "r", Type: model.NodeTypeRoot,
			Children: []*model.Node{
				{ID: "d1", Type: model.NodeTypeItem, Fields: map[string]any{
					"stage":     "won",
					"dealValue": 100.0,
					"mood":      "great",
					"_rag":      map[string]any{"source": "crm"},
				}},
			},
		},
	}
	got := Validate(tr)
	if len(got) != 1 || !strings.Contains(got[0], "mood") {
		t.Fatalf("validate: %v", got)
	}
}

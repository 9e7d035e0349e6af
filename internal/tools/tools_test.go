package tools

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/macrolab/fredmcp/internal/fault"
)

func TestArgStringSlice(t *testing.T) {
	args := map[string]any{"series_list": []any{"UNRATE", "CPIAUCSL"}}
	got, err := argStringSlice(args, "series_list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "UNRATE" || got[1] != "CPIAUCSL" {
		t.Errorf("unexpected slice %v", got)
	}

	if got, err := argStringSlice(args, "missing"); err != nil || got != nil {
		t.Errorf("absent key should be (nil, nil), got %v %v", got, err)
	}

	if _, err := argStringSlice(map[string]any{"k": "not-a-list"}, "k"); err == nil {
		t.Error("expected error for a non-array value")
	}
	if _, err := argStringSlice(map[string]any{"k": []any{"ok", 7}}, "k"); err == nil {
		t.Error("expected error for a non-string element")
	}
}

func TestArgStringMap(t *testing.T) {
	args := map[string]any{"transformations": map[string]any{"CPIAUCSL": "YoY"}}
	got, err := argStringMap(args, "transformations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["CPIAUCSL"] != "YoY" {
		t.Errorf("unexpected map %v", got)
	}

	if got, err := argStringMap(args, "missing"); err != nil || got != nil {
		t.Errorf("absent key should be (nil, nil), got %v %v", got, err)
	}

	if _, err := argStringMap(map[string]any{"k": []any{"x"}}, "k"); err == nil {
		t.Error("expected error for a non-object value")
	}
	if _, err := argStringMap(map[string]any{"k": map[string]any{"a": 1}}, "k"); err == nil {
		t.Error("expected error for a non-string value")
	}
}

func TestErrResultLeadsWithKind(t *testing.T) {
	res := errResult(fault.New(fault.EmptyIntersection, "no overlapping dates"))
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "empty_intersection: ") {
		t.Errorf("the fault kind should lead the message, got %q", text)
	}
}

func TestJSONResult(t *testing.T) {
	res := jsonResult(map[string]string{"series_id": "UNRATE"})
	if res.IsError {
		t.Fatal("unexpected error result")
	}
	text := resultText(t, res)
	if !strings.Contains(text, `"series_id": "UNRATE"`) {
		t.Errorf("expected indented JSON payload, got %q", text)
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

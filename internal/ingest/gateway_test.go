package ingest

import (
	"encoding/json"
	"testing"
)

func TestPeekURL(t *testing.T) {
	t.Parallel()

	if got := peekURL(json.RawMessage(`{"url":"https://a.ar/x","title":"t"}`)); got != "https://a.ar/x" {
		t.Fatalf("peekURL = %q", got)
	}
	if got := peekURL(json.RawMessage(`{"title":"sin url"}`)); got != "" {
		t.Fatalf("missing url should yield empty string, got %q", got)
	}
	if got := peekURL(json.RawMessage(`not json`)); got != "" {
		t.Fatalf("invalid json should yield empty string, got %q", got)
	}
}

func TestRunOutcome(t *testing.T) {
	t.Parallel()

	status, msg := runOutcome(&BatchResult{ItemsFound: 3, ItemsNew: 2, ItemsUpdated: 1})
	if status != runStatusCompleted || msg != nil {
		t.Fatalf("clean batch: got %q, %v", status, msg)
	}

	status, msg = runOutcome(&BatchResult{ItemsFound: 3, ItemsNew: 1, ErrorCount: 2})
	if status != runStatusCompleted || msg != nil {
		t.Fatalf("partially failed batch should still complete: got %q, %v", status, msg)
	}

	status, msg = runOutcome(&BatchResult{ItemsFound: 3, ErrorCount: 3})
	if status != runStatusFailed || msg == nil {
		t.Fatalf("fully rejected batch should fail the run: got %q, %v", status, msg)
	}

	status, msg = runOutcome(&BatchResult{})
	if status != runStatusCompleted || msg != nil {
		t.Fatalf("empty batch: got %q, %v", status, msg)
	}
}

func TestMarshalStrings(t *testing.T) {
	t.Parallel()

	if got := marshalStrings(nil); got != nil {
		t.Fatalf("nil slice should marshal to nil, got %s", got)
	}
	if got := marshalStrings([]string{}); got != nil {
		t.Fatalf("empty slice should marshal to nil, got %s", got)
	}

	raw := marshalStrings([]string{"economia", "inflacion"})
	var back []string
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[0] != "economia" {
		t.Fatalf("round trip mismatch: %v", back)
	}
}

func TestMarshalMap(t *testing.T) {
	t.Parallel()

	if got := marshalMap(nil); got != nil {
		t.Fatalf("nil map should marshal to nil, got %s", got)
	}

	raw := marshalMap(map[string]any{"paywall": true})
	var back map[string]any
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["paywall"] != true {
		t.Fatalf("round trip mismatch: %v", back)
	}
}

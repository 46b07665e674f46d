package staging

import (
	"errors"
	"strings"
	"testing"
)

func TestFilterNormalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         Filter
		wantLimit  int
		wantOffset int
	}{
		{name: "zero limit gets default", in: Filter{}, wantLimit: defaultListLimit, wantOffset: 0},
		{name: "negative limit gets default", in: Filter{Limit: -5}, wantLimit: defaultListLimit, wantOffset: 0},
		{name: "oversized limit is clamped", in: Filter{Limit: 5000}, wantLimit: maxListLimit, wantOffset: 0},
		{name: "valid limit kept", in: Filter{Limit: 50, Offset: 200}, wantLimit: 50, wantOffset: 200},
		{name: "negative offset reset", in: Filter{Limit: 10, Offset: -1}, wantLimit: 10, wantOffset: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.in.normalized()
			if got.Limit != tc.wantLimit {
				t.Fatalf("Limit = %d, want %d", got.Limit, tc.wantLimit)
			}
			if got.Offset != tc.wantOffset {
				t.Fatalf("Offset = %d, want %d", got.Offset, tc.wantOffset)
			}
		})
	}
}

func TestNullableBool(t *testing.T) {
	t.Parallel()

	if got := nullableBool(nil); got != nil {
		t.Fatalf("nil filter should bind as NULL, got %v", got)
	}
	yes := true
	if got := nullableBool(&yes); got != true {
		t.Fatalf("set filter should bind its value, got %v", got)
	}
	no := false
	if got := nullableBool(&no); got != false {
		t.Fatalf("false is a real filter value, got %v", got)
	}
}

func TestUpdatePatchIsEmpty(t *testing.T) {
	t.Parallel()

	if !(UpdatePatch{}).isEmpty() {
		t.Fatal("zero patch should be empty")
	}
	if (UpdatePatch{UpdatedBy: "ops"}).isEmpty() != true {
		t.Fatal("UpdatedBy alone does not make a patch non-empty")
	}

	title := "t"
	if (UpdatePatch{Title: &title}).isEmpty() {
		t.Fatal("patch with Title should not be empty")
	}
	st := StateReadyForAI
	if (UpdatePatch{State: &st}).isEmpty() {
		t.Fatal("patch with State should not be empty")
	}
	if (UpdatePatch{AIMetadata: []byte(`{}`)}).isEmpty() {
		t.Fatal("patch with AIMetadata should not be empty")
	}
}

func TestUpdatePatchTouchesContent(t *testing.T) {
	t.Parallel()

	title := "t"
	meta := []byte(`{"k":"v"}`)

	if !(UpdatePatch{Title: &title}).touchesContent() {
		t.Fatal("Title is a content field")
	}
	if !(UpdatePatch{AITags: meta}).touchesContent() {
		t.Fatal("AITags is a content field")
	}
	if (UpdatePatch{ExtraMetadata: meta}).touchesContent() {
		t.Fatal("ExtraMetadata is not a content field")
	}
	if (UpdatePatch{AIMetadata: meta}).touchesContent() {
		t.Fatal("AIMetadata is not a content field")
	}
	if (UpdatePatch{StateMessage: &title}).touchesContent() {
		t.Fatal("StateMessage is not a content field")
	}
}

func TestClassifyStoreError(t *testing.T) {
	t.Parallel()

	uniqueErr := errors.New(`ERROR: duplicate key value violates unique constraint "idx_staging_items_url_hash" (SQLSTATE 23505)`)
	if got := classifyStoreError(uniqueErr); !errors.Is(got, ErrDuplicateURL) {
		t.Fatalf("unique violation should map to ErrDuplicateURL, got %v", got)
	}

	serializationErr := errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")
	if got := classifyStoreError(serializationErr); !errors.Is(got, ErrTransientStore) {
		t.Fatalf("serialization failure should map to ErrTransientStore, got %v", got)
	}

	deadlockErr := errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")
	if got := classifyStoreError(deadlockErr); !errors.Is(got, ErrTransientStore) {
		t.Fatalf("deadlock should map to ErrTransientStore, got %v", got)
	}

	other := errors.New("connection refused")
	if got := classifyStoreError(other); !strings.Contains(got.Error(), "connection refused") {
		t.Fatalf("unrelated errors must pass through, got %v", got)
	}
	if classifyStoreError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
}

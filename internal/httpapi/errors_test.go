package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"ladatajusta.ar/newsroom/internal/staging"
)

func recordStagingError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if handlerErr := respondStagingError(c, err); handlerErr != nil {
		t.Fatalf("respondStagingError returned error: %v", handlerErr)
	}
	return rec
}

func TestRespondStagingError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
	}{
		{staging.ErrNotFound, http.StatusNotFound},
		{staging.ErrDuplicateURL, http.StatusConflict},
		{staging.ErrInvalidTransition, http.StatusConflict},
		{staging.ErrTerminalStateImmutable, http.StatusConflict},
		{staging.ErrCannotDeletePublished, http.StatusConflict},
		{staging.ErrAlreadyPublished, http.StatusConflict},
		{staging.ErrRetryLimitReached, http.StatusConflict},
		{staging.ErrInvalidState, http.StatusUnprocessableEntity},
		{staging.ErrTransientStore, http.StatusServiceUnavailable},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			t.Parallel()
			rec := recordStagingError(t, fmt.Errorf("staging item abc: %w", tc.err))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestIsStoreError(t *testing.T) {
	t.Parallel()

	if !isStoreError(fmt.Errorf("upsert staging item: %w", staging.ErrTransientStore)) {
		t.Fatal("transient store failure should classify as a store error")
	}
	if !isStoreError(fmt.Errorf("upsert staging item: %w", staging.ErrDuplicateURL)) {
		t.Fatal("duplicate url should classify as a store error")
	}
	if isStoreError(errors.New("invalid scraped article payload: payload_version must be v1")) {
		t.Fatal("validation failure should not classify as a store error")
	}
}

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()

	if got, err := parsePositiveInt("", 20, 1, 100); err != nil || got != 20 {
		t.Fatalf("empty input: got %d, %v", got, err)
	}
	if got, err := parsePositiveInt("42", 20, 1, 100); err != nil || got != 42 {
		t.Fatalf("valid input: got %d, %v", got, err)
	}
	if _, err := parsePositiveInt("abc", 20, 1, 100); err == nil {
		t.Fatal("non-numeric input should fail")
	}
	if _, err := parsePositiveInt("500", 20, 1, 100); err == nil {
		t.Fatal("out-of-range input should fail")
	}
}

func TestParseBoolFilter(t *testing.T) {
	t.Parallel()

	if got, err := parseBoolFilter(""); err != nil || got != nil {
		t.Fatalf("empty input: got %v, %v", got, err)
	}
	if got, err := parseBoolFilter("true"); err != nil || got == nil || !*got {
		t.Fatalf("true input: got %v, %v", got, err)
	}
	if got, err := parseBoolFilter("false"); err != nil || got == nil || *got {
		t.Fatalf("false input: got %v, %v", got, err)
	}
	if _, err := parseBoolFilter("quizas"); err == nil {
		t.Fatal("garbage input should fail")
	}
}

func TestParseTimeFilter(t *testing.T) {
	t.Parallel()

	if got, err := parseTimeFilter(""); err != nil || !got.IsZero() {
		t.Fatalf("empty input: got %v, %v", got, err)
	}
	if got, err := parseTimeFilter("2026-06-15T10:00:00Z"); err != nil || got.Hour() != 10 {
		t.Fatalf("rfc3339 input: got %v, %v", got, err)
	}
	if got, err := parseTimeFilter("2026-06-15"); err != nil || got.Day() != 15 {
		t.Fatalf("date input: got %v, %v", got, err)
	}
	if _, err := parseTimeFilter("anteayer"); err == nil {
		t.Fatal("garbage input should fail")
	}
}

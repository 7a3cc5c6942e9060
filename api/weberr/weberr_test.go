package weberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResponse(t *testing.T) {
	err := fmt.Errorf("handler: %w", BadRequest(errors.New("title is required")))

	body, status, ok := Response(err)
	if !ok {
		t.Fatal("expected a response to be attached")
	}
	if status != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, status)
	}
	if diff := cmp.Diff(&ErrorResponse{Error: "title is required"}, body); diff != "" {
		t.Fatalf("unexpected body (-want +got):\n%s", diff)
	}

	if _, _, ok := Response(errors.New("plain")); ok {
		t.Fatal("plain errors carry no response")
	}
}

func TestFieldsMerge(t *testing.T) {
	inner := Wrap(errors.New("boom"), WithFields(map[string]any{"a": 1, "b": 1}))
	outer := Wrap(fmt.Errorf("wrapped: %w", inner), WithFields(map[string]any{"b": 2}))

	got, ok := Fields(outer)
	if !ok {
		t.Fatal("expected fields")
	}
	if diff := cmp.Diff(map[string]any{"a": 1, "b": 2}, got); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

package sources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestClassifyFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FetchKind
	}{
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: FetchKindTimeout,
		},
		{
			name: "cancellation",
			err:  context.Canceled,
			want: FetchKindTimeout,
		},
		{
			name: "wrapped deadline",
			err:  errors.Join(errors.New("request failed"), context.DeadlineExceeded),
			want: FetchKindTimeout,
		},
		{
			name: "json syntax error",
			err:  json.Unmarshal([]byte("{not json"), &struct{}{}),
			want: FetchKindDecode,
		},
		{
			name: "plain transport error",
			err:  errors.New("connection refused"),
			want: FetchKindNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFetchError("test-adapter", tt.err)
			if got.Kind != tt.want {
				t.Errorf("Expected kind %s, got %s", tt.want, got.Kind)
			}
			if got.Adapter != "test-adapter" {
				t.Errorf("Expected adapter name preserved, got %s", got.Adapter)
			}
		})
	}
}

func TestClassifyFetchError_KeepsExistingFetchError(t *testing.T) {
	original := NewFetchError(FetchKindHTTPStatus, "a", "unexpected status 502", nil)

	got := ClassifyFetchError("a", original)
	if got != original {
		t.Error("Expected the original *FetchError to pass through unchanged")
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	fe := NewFetchError(FetchKindNetwork, "a", "request failed", inner)

	if !errors.Is(fe, inner) {
		t.Error("Expected errors.Is to reach the wrapped error")
	}
}

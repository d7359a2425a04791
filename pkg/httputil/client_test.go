package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

func newTestClient(headers map[string]string) *Client {
	return NewClient(headers, time.Second).WithRetry(3, time.Millisecond)
}

func TestClientGetJSON(t *testing.T) {
	var gotKey, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotKey = r.Header.Get("X-Api-Key")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(map[string]string{"message": "hello"})
	}))
	defer server.Close()

	var resp struct {
		Message string `json:"message"`
	}
	c := newTestClient(map[string]string{"X-Api-Key": "secret"})
	if err := c.GetJSON(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("message = %q, want hello", resp.Message)
	}
	if gotKey != "secret" || gotAccept != "application/json" {
		t.Errorf("headers: key=%q accept=%q", gotKey, gotAccept)
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   errors.Code
		calls  int32
	}{
		{http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized, 1},
		{http.StatusForbidden, errors.ErrCodeUnauthorized, 1},
		{http.StatusBadRequest, errors.ErrCodeNetwork, 1},
		{http.StatusBadGateway, errors.ErrCodeNetwork, 3},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			var v any
			err := newTestClient(nil).GetJSON(context.Background(), server.URL, &v)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want code %s", err, tt.want)
			}
			if calls.Load() != tt.calls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.calls)
			}
		})
	}
}

func TestClientRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	var got []int
	if err := newTestClient(nil).GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if len(got) != 3 || calls.Load() != 2 {
		t.Errorf("got %v after %d calls", got, calls.Load())
	}
}

func TestClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	var v any
	err := newTestClient(nil).GetJSON(context.Background(), server.URL, &v)
	if !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeMalformedInput)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return &RetryableError{Err: context.DeadlineExceeded}
	})
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

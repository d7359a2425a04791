package credentials

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/errors"
)

const listBody = `[
 {"id":"1","name":"Personal","type":"openAiApi","createdAt":"2024-01-02T10:00:00Z","updatedAt":"2024-03-04T10:00:00Z"},
 {"id":"2","name":"Team","type":"openAiApi","createdAt":"2024-01-05T10:00:00Z","updatedAt":"2024-01-05T10:00:00Z"}]`

func newClient(t *testing.T, url string, c cache.Cache) *Client {
	t.Helper()
	client, err := NewClient(Options{BaseURL: url, APIKey: "k3y", Cache: c, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	client.HTTP().WithRetry(3, time.Millisecond)
	return client
}

func TestClientList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"bare array", listBody, []string{"Personal", "Team"}},
		{"data envelope", `{"data":` + listBody + `,"nextCursor":null}`, []string{"Personal", "Team"}},
		{"credentials envelope", `{"credentials":` + listBody + `}`, []string{"Personal", "Team"}},
		{"empty data", `{"data":[]}`, nil},
		{"null data", `{"data":null}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/credentials" {
					t.Errorf("path = %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("type"); got != "openAiApi" {
					t.Errorf("type = %q, want openAiApi", got)
				}
				if got := r.Header.Get(APIKeyHeader); got != "k3y" {
					t.Errorf("api key = %q", got)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			creds, err := newClient(t, server.URL+"/", nil).List(context.Background(), "openAiApi")
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if len(creds) != len(tt.want) {
				t.Fatalf("got %d credentials, want %d", len(creds), len(tt.want))
			}
			for i, name := range tt.want {
				if creds[i].Name != name {
					t.Errorf("creds[%d].Name = %q, want %q", i, creds[i].Name, name)
				}
			}
		})
	}
}

func TestClientList_Malformed(t *testing.T) {
	for _, body := range []string{`{}`, `{"items":[]}`, `{"data":{"id":"1"}}`, `"nope"`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := newClient(t, server.URL, nil).List(context.Background(), "openAiApi")
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Errorf("List() error = %v, want MALFORMED_INPUT", err)
			}
		})
	}
}

func TestClientList_Fields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listBody))
	}))
	defer server.Close()

	creds, err := newClient(t, server.URL, nil).List(context.Background(), "openAiApi")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	first := creds[0]
	if first.ID != "1" || first.Type != "openAiApi" {
		t.Errorf("first = %+v", first)
	}
	if want := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC); !first.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", first.UpdatedAt, want)
	}
	if ref := first.Ref(); ref.ID != "1" || ref.Name != "Personal" {
		t.Errorf("Ref() = %+v", ref)
	}
}

func TestClientList_Cached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(listBody))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer fc.Close()

	client := newClient(t, server.URL, fc)
	for range 3 {
		if _, err := client.List(context.Background(), "openAiApi"); err != nil {
			t.Fatalf("List() error: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestClientList_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.Code
	}{
		{"unauthorized", http.StatusUnauthorized, "", errors.ErrCodeUnauthorized},
		{"not found", http.StatusNotFound, "", errors.ErrCodeNotFound},
		{"server error", http.StatusInternalServerError, "", errors.ErrCodeNetwork},
		{"garbage", http.StatusOK, `"just a string"`, errors.ErrCodeMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(t, server.URL, nil).List(context.Background(), "openAiApi")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestClientList_InvalidKind(t *testing.T) {
	client := newClient(t, "http://localhost:1", nil)
	for _, kind := range []string{"", "a b", "x&type=y"} {
		if _, err := client.List(context.Background(), kind); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("List(%q) error = %v, want %s", kind, err, errors.ErrCodeInvalidInput)
		}
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "not a url"}); err == nil {
		t.Error("NewClient() accepted an invalid base URL")
	}
}

// gatedLookup blocks each List call until its kind is released.
type gatedLookup struct {
	gates map[string]chan struct{}
}

func (g *gatedLookup) List(ctx context.Context, kind string) ([]Credential, error) {
	select {
	case <-g.gates[kind]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []Credential{{ID: kind, Name: kind}}, nil
}

func TestLatest_DropsSuperseded(t *testing.T) {
	lookup := &gatedLookup{gates: map[string]chan struct{}{
		"slowApi": make(chan struct{}),
		"fastApi": make(chan struct{}),
	}}
	latest := NewLatest(lookup)

	type result struct {
		creds []Credential
		err   error
	}
	first := make(chan result, 1)
	go func() {
		creds, err := latest.Fetch(context.Background(), "node-1", "slowApi")
		first <- result{creds, err}
	}()

	for latest.Current() != "node-1" {
		time.Sleep(time.Millisecond)
	}

	close(lookup.gates["fastApi"])
	creds, err := latest.Fetch(context.Background(), "node-2", "fastApi")
	if err != nil || len(creds) != 1 || creds[0].ID != "fastApi" {
		t.Fatalf("second Fetch() = %v, %v", creds, err)
	}

	close(lookup.gates["slowApi"])
	r := <-first
	if !stderrors.Is(r.err, ErrStale) || r.creds != nil {
		t.Errorf("first Fetch() = %v, %v; want ErrStale", r.creds, r.err)
	}
	if latest.Current() != "node-2" {
		t.Errorf("Current() = %q, want node-2", latest.Current())
	}
}

func TestLatest_PassesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	latest := NewLatest(newClient(t, server.URL, nil))
	_, err := latest.Fetch(context.Background(), "n", "openAiApi")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnauthorized)
	}
}

package webhook

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/octobees/decisionfindr/api/internal/logging"
)

func TestClient_FetchProfiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webhook/decisionfindr" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("titles") != "CTO,VP" || r.URL.Query().Get("companies") != "Tesla" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("Accept") != "application/json" || r.Header.Get("X-Request-ID") != "req-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Jane Doe - CTO - Tesla","email":"jane@tesla.com"}]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "decisionfindr", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := WithRequestID(context.Background(), "req-1")
	results, err := client.FetchProfiles(ctx, []string{"CTO", "VP"}, []string{"Tesla"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Jane Doe" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestClient_FetchProfilesStatusErrors(t *testing.T) {
	tests := map[string]struct {
		status    int
		retryable bool
	}{
		"server error": {status: http.StatusBadGateway, retryable: true},
		"rate limited": {status: http.StatusTooManyRequests, retryable: true},
		"bad request":  {status: http.StatusBadRequest, retryable: false},
		"not found":    {status: http.StatusNotFound, retryable: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"upstream said no"}`))
			}))
			defer server.Close()

			client, _ := NewClient(server.URL, "search", WithHTTPClient(server.Client()))
			_, err := client.FetchProfiles(context.Background(), []string{"CTO"}, nil)
			fe, ok := IsFetchError(err)
			if !ok {
				t.Fatalf("expected fetch error, got %v", err)
			}
			if fe.StatusCode != tt.status || fe.Retryable() != tt.retryable {
				t.Fatalf("unexpected fetch error: %+v retryable=%v", fe, fe.Retryable())
			}
			if !strings.Contains(fe.Error(), "upstream said no") {
				t.Fatalf("expected upstream message, got %s", fe.Error())
			}
		})
	}
}

func TestClient_FetchProfilesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := NewClient(url, "search", WithHTTPClient(&http.Client{}))
	_, err := client.FetchProfiles(context.Background(), []string{"CTO"}, nil)
	fe, ok := IsFetchError(err)
	if !ok || fe.Op != OpRequest || !fe.Retryable() {
		t.Fatalf("expected retryable transport error, got %v", err)
	}
}

func TestClient_FetchProfilesMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"truncated":`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	client, _ := NewClient(server.URL, "search", WithHTTPClient(server.Client()), WithLogger(logging.NewWithWriter("info", &buf)))
	results, err := client.FetchProfiles(context.Background(), []string{"CTO"}, nil)
	if err != nil {
		t.Fatalf("expected no error for malformed payload, got %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil results, got %v", results)
	}
	if !strings.Contains(buf.String(), "unparseable") {
		t.Fatalf("expected warning log, got %q", buf.String())
	}
}

func TestClient_Forward(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webhook/other" || r.URL.RawQuery != "titles=CTO" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"raw":true}`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "search", WithHTTPClient(server.Client()))
	resp, err := client.Forward(context.Background(), "other", "titles=CTO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted || string(resp.Body) != `{"raw":true}` || resp.ContentType != "application/json" {
		t.Fatalf("unexpected forward response: %+v", resp)
	}

	if _, err := client.Forward(context.Background(), "../admin", ""); err == nil {
		t.Fatalf("expected invalid path error")
	}
}

func TestClient_RejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[` + strings.Repeat(`{"name":"Jane"},`, 64) + `{}]`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "search", WithHTTPClient(server.Client()), WithMaxBodyBytes(128))
	_, err := client.FetchProfiles(context.Background(), []string{"CTO"}, nil)
	fe, ok := IsFetchError(err)
	if !ok || fe.Op != OpSize || !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected size error, got %v", err)
	}
	if fe.Retryable() {
		t.Fatalf("expected oversized body not to be retryable")
	}

	if _, err := client.Forward(context.Background(), "other", ""); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected forward to enforce the same cap, got %v", err)
	}

	roomy, _ := NewClient(server.URL, "search", WithHTTPClient(server.Client()), WithMaxBodyBytes(1<<20))
	if _, err := roomy.FetchProfiles(context.Background(), []string{"CTO"}, nil); err != nil {
		t.Fatalf("expected body under the cap to be read, got %v", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", "search"); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
	if _, err := NewClient("http://n8n", " / "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestFetchError_CanceledNotRetryable(t *testing.T) {
	fe := &FetchError{Op: OpRequest, Err: context.Canceled}
	if fe.Retryable() {
		t.Fatalf("expected cancellation not to be retryable")
	}
	if !errors.Is(fe, context.Canceled) {
		t.Fatalf("expected unwrap to expose cause")
	}
}

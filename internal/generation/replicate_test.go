package generation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkarpenko/interio_bot/utils"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("token", "version", utils.InitLogger())
	c.baseURL = serverURL
	return c
}

// A prediction stuck in the queue must not outlive the caller's deadline.
func TestGenerateStopsOnContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "pred-1", "status": "processing"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(server.URL).Generate(ctx, "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Generate kept polling past the deadline: %v", elapsed)
	}
}

func TestGenerateReturnsOutput(t *testing.T) {
	var polls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"id": "pred-1", "status": "starting"}`))
			return
		}
		polls++
		if polls < 2 {
			w.Write([]byte(`{"id": "pred-1", "status": "processing"}`))
			return
		}
		w.Write([]byte(`{"id": "pred-1", "status": "succeeded", "output": ["https://cdn.example/img.png"]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := newTestClient(server.URL).Generate(ctx, "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if url != "https://cdn.example/img.png" {
		t.Errorf("unexpected output url %q", url)
	}
}

func TestGenerateReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"id": "pred-1", "status": "starting"}`))
			return
		}
		w.Write([]byte(`{"id": "pred-1", "status": "failed", "error": "NSFW content"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := newTestClient(server.URL).Generate(ctx, "prompt"); err == nil {
		t.Fatal("expected an error for a failed prediction")
	}
}

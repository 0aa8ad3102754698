package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type flakyDispatcher struct {
	failures int
	calls    atomic.Int32
}

func (f *flakyDispatcher) Channel() string { return "test" }

func (f *flakyDispatcher) Send(ctx context.Context, destination, summary string) error {
	if int(f.calls.Add(1)) <= f.failures {
		return &Error{Channel: "test", Destination: destination, Err: errors.New("transport down")}
	}
	return nil
}

func TestBoundedRetrySucceedsOnSecondAttempt(t *testing.T) {
	inner := &flakyDispatcher{failures: 1}
	b := WithBoundedRetry(inner)

	if err := b.Send(context.Background(), "@guest:example.org", "summary"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if inner.calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", inner.calls.Load())
	}
}

func TestBoundedRetryGivesUpAfterTwoAttempts(t *testing.T) {
	inner := &flakyDispatcher{failures: 5}
	b := WithBoundedRetry(inner)

	err := b.Send(context.Background(), "@guest:example.org", "summary")
	var derr *Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if inner.calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", inner.calls.Load())
	}
}

func TestDocumentDispatcherSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/documents/send" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDocumentDispatcher(DocumentConfig{BaseURL: srv.URL, APIKey: "secret"})
	if err := d.Send(context.Background(), "guest@example.org", "Your booking summary"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["recipient"] != "guest@example.org" || got["summary"] != "Your booking summary" {
		t.Fatalf("payload = %v", got)
	}
}

func TestDocumentDispatcherTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "renderer offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewDocumentDispatcher(DocumentConfig{BaseURL: srv.URL})
	err := d.Send(context.Background(), "guest@example.org", "summary")
	var derr *Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if derr.Channel != "document" || derr.Destination != "guest@example.org" {
		t.Fatalf("error fields = %+v", derr)
	}
}

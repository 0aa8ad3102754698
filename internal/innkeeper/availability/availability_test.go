package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCatalogFitFor(t *testing.T) {
	cases := []struct {
		guests int
		want   string
		ok     bool
	}{
		{0, "individual", true},
		{1, "individual", true},
		{2, "doble", true},
		{3, "triple", true},
		{4, "familiar", true},
		{5, "familiar", true},
		{6, "", false},
	}
	for _, tc := range cases {
		spec, ok := DefaultCatalog.FitFor(tc.guests)
		if ok != tc.ok || spec.Type != tc.want {
			t.Errorf("FitFor(%d) = %q,%v want %q,%v", tc.guests, spec.Type, ok, tc.want, tc.ok)
		}
	}
}

func TestStaticCheckerUpgradesUndersizedRoom(t *testing.T) {
	checker := NewStaticChecker(nil)

	res, err := checker.CheckAvailability(context.Background(), Query{
		TenantID: "tenant-a", RoomType: "doble", NumGuests: 3,
		CheckIn: "2026-09-10", CheckOut: "2026-09-12",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.OK || !res.Available {
		t.Fatalf("expected available, got %+v", res)
	}
	if res.Proposal.SuggestedRoomType != "triple" {
		t.Fatalf("suggested = %q, want triple", res.Proposal.SuggestedRoomType)
	}
}

func TestStaticCheckerKeepsFittingRoom(t *testing.T) {
	checker := NewStaticChecker(nil)

	res, err := checker.CheckAvailability(context.Background(), Query{
		TenantID: "tenant-a", RoomType: "suite", NumGuests: 2,
		CheckIn: "2026-09-10", CheckOut: "2026-09-12",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Proposal.SuggestedRoomType != "suite" {
		t.Fatalf("suggested = %q, want suite", res.Proposal.SuggestedRoomType)
	}
}

func TestHTTPCheckerRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var q Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("decode query: %v", err)
		}
		json.NewEncoder(w).Encode(Result{OK: true, Available: true})
	}))
	defer srv.Close()

	checker := NewHTTPChecker(HTTPConfig{BaseURL: srv.URL})
	res, err := checker.CheckAvailability(context.Background(), Query{
		TenantID: "tenant-a", CheckIn: "2026-09-10", CheckOut: "2026-09-12",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.OK || !res.Available {
		t.Fatalf("expected ok result, got %+v", res)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestHTTPCheckerDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	checker := NewHTTPChecker(HTTPConfig{BaseURL: srv.URL})
	if _, err := checker.CheckAvailability(context.Background(), Query{TenantID: "t"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestHandoffDebouncer(t *testing.T) {
	d := NewHandoffDebouncer(time.Minute)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	if !d.ShouldAnnounce("t:c1", now) {
		t.Fatal("first failure should announce")
	}
	if d.ShouldAnnounce("t:c1", now.Add(30*time.Second)) {
		t.Fatal("failure inside window should not announce")
	}
	if !d.ShouldAnnounce("t:c2", now.Add(30*time.Second)) {
		t.Fatal("other conversation is independent")
	}
	if !d.ShouldAnnounce("t:c1", now.Add(2*time.Minute)) {
		t.Fatal("failure after window should announce again")
	}
}

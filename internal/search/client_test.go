package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go testing" {
			t.Errorf("q = %q, want %q", got, "go testing")
		}
		if got := r.URL.Query().Get("num"); got != "3" {
			t.Errorf("num = %q, want %q", got, "3")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"title":"T1","snippet":"S1","link":"L1"},{"title":"T2","snippet":"S2","link":"L2"}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", "cse", WithEndpoint(srv.URL))
	results, err := c.Search(context.Background(), "go testing", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Title != "T1" || results[1].Link != "L2" {
		t.Fatalf("results = %+v", results)
	}
}

func TestSearchNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("key", "cse", WithEndpoint(srv.URL))
	results, err := c.Search(context.Background(), "anything", 3)
	if err == nil {
		t.Fatalf("Search() on 403 should return an error")
	}
	if len(results) != 0 {
		t.Fatalf("Search() on error returned %d results, want 0", len(results))
	}
}

func TestSearchEmptyItemsIsNormal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("key", "cse", WithEndpoint(srv.URL))
	results, err := c.Search(context.Background(), "obscure", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Search() = %+v, want empty", results)
	}
}

func TestSearchTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("key", "cse", WithEndpoint(srv.URL), WithTimeout(20*time.Millisecond))
	if _, err := c.Search(context.Background(), "slow", 3); err == nil {
		t.Fatalf("Search() should fail once the client timeout elapses")
	}
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{{Title: "T", Snippet: "S", Link: "L"}})
	for _, want := range []string{"Result 1: T", "S", "L"} {
		if !strings.Contains(out, want) {
			t.Fatalf("FormatResults() missing %q:\n%s", want, out)
		}
	}
}

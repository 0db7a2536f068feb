package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/secondbrain/secondbrain/internal/config"
	"github.com/secondbrain/secondbrain/internal/memory"
)

type echoOrchestrator struct{}

func (echoOrchestrator) Process(_ context.Context, message string) string {
	return "echo: " + message
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.InMemoryStore) {
	t.Helper()
	store := memory.NewInMemoryStore()
	s := New(config.Config{}, echoOrchestrator{}, store)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
}

func TestChatEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/v1/chat", "application/json", strings.NewReader(`{"message":"hello"}`))
	if err != nil {
		t.Fatalf("POST /v1/chat error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var body chatResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Response != "echo: hello" {
		t.Fatalf("response = %q", body.Response)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/v1/chat", "application/json", strings.NewReader(`{"message":"  "}`))
	if err != nil {
		t.Fatalf("POST /v1/chat error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestListAndSearchMemories(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	if err := store.SaveMemory(ctx, "I like pizza", memory.CategoryPreference, 2); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}

	res, err := http.Get(srv.URL + "/v1/memories")
	if err != nil {
		t.Fatalf("GET /v1/memories error = %v", err)
	}
	defer res.Body.Close()
	var entries []memory.Entry
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "I like pizza" {
		t.Fatalf("entries = %+v", entries)
	}

	res2, err := http.Get(srv.URL + "/v1/memories/search?q=PIZZA")
	if err != nil {
		t.Fatalf("GET search error = %v", err)
	}
	defer res2.Body.Close()
	var hits []memory.Entry
	if err := json.NewDecoder(res2.Body).Decode(&hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestSearchMemoriesRequiresQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	res, err := http.Get(srv.URL + "/v1/memories/search")
	if err != nil {
		t.Fatalf("GET search error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestDeleteMemory(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	if err := store.SaveMemory(ctx, "temp", memory.CategoryGeneral, 1); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/memories/1", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	defer res.Body.Close()

	var body map[string]bool
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["deleted"] {
		t.Fatalf("deleted = false, want true")
	}
}

func TestDeleteMemoryInvalidID(t *testing.T) {
	srv, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/memories/abc", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestProfileNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	res, err := http.Get(srv.URL + "/v1/profile")
	if err != nil {
		t.Fatalf("GET /v1/profile error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
}

func TestChatWebSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/chat/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsInbound{Message: "ping"}); err != nil {
		t.Fatalf("ws write error = %v", err)
	}
	var out wsOutbound
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("ws read error = %v", err)
	}
	if out.Response != "echo: ping" {
		t.Fatalf("ws response = %+v", out)
	}
	if out.TurnID == "" {
		t.Fatalf("ws response missing turn id")
	}
}

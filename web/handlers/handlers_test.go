package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kopibot/kopi/internal/config"
	"github.com/kopibot/kopi/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("failed to initialize storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	srv := httptest.NewServer(New(store, cfg).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postConversation(t *testing.T, srv *httptest.Server, body string) (*http.Response, conversationResponse) {
	t.Helper()

	resp, err := http.Post(srv.URL+"/conversation", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var out conversationResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("wrong status: got %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Process-Time") == "" {
		t.Error("missing X-Process-Time header")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("wrong status field: %s", body["status"])
	}
}

func TestStartConversation(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postConversation(t, srv, `{"message": "Climate change is a hoax invented for money"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wrong status: got %d, want 200", resp.StatusCode)
	}
	if out.ConversationID == "" {
		t.Fatal("missing conversation_id")
	}
	if len(out.Messages) != 2 {
		t.Fatalf("wrong message count: got %d, want 2", len(out.Messages))
	}
	if out.Messages[0].Role != "user" || out.Messages[1].Role != "bot" {
		t.Errorf("wrong roles: %s, %s", out.Messages[0].Role, out.Messages[1].Role)
	}
	if out.Messages[1].Message == "" {
		t.Error("bot reply is empty")
	}
}

func TestContinueConversation(t *testing.T) {
	srv := newTestServer(t)

	_, first := postConversation(t, srv, `{"message": "Vaccines cause more harm than good"}`)

	body := fmt.Sprintf(`{"conversation_id": %q, "message": "I still do not trust them"}`, first.ConversationID)
	resp, second := postConversation(t, srv, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wrong status: got %d, want 200", resp.StatusCode)
	}
	if second.ConversationID != first.ConversationID {
		t.Error("conversation_id changed between turns")
	}
	if len(second.Messages) != 4 {
		t.Errorf("wrong message count: got %d, want 4", len(second.Messages))
	}
}

func TestContinueUnknownConversation(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postConversation(t, srv, `{"conversation_id": "no-such-id", "message": "hello there"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("wrong status: got %d, want 404", resp.StatusCode)
	}
}

func TestConversationValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"EmptyMessage", `{"message": ""}`},
		{"WhitespaceMessage", `{"message": "   "}`},
		{"TooLong", fmt.Sprintf(`{"message": %q}`, strings.Repeat("a", 2001))},
		{"MalformedJSON", `{"message": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postConversation(t, srv, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("wrong status: got %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetConversation(t *testing.T) {
	srv := newTestServer(t)

	_, created := postConversation(t, srv, `{"message": "The earth is flat and NASA lies"}`)

	resp, err := http.Get(srv.URL + "/conversation/" + created.ConversationID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wrong status: got %d, want 200", resp.StatusCode)
	}

	var body struct {
		ConversationID string `json:"conversation_id"`
		TopicKey       string `json:"topic_key"`
		Stance         string `json:"stance"`
		MessageCount   int    `json:"message_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TopicKey != "earth_shape" {
		t.Errorf("wrong topic key: %s", body.TopicKey)
	}
	if body.Stance != "strongly_for" {
		t.Errorf("wrong stance: %s", body.Stance)
	}
	if body.MessageCount != 2 {
		t.Errorf("wrong message count: %d", body.MessageCount)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/conversation/missing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("wrong status: got %d, want 404", resp.StatusCode)
	}
}

func TestListConversations(t *testing.T) {
	srv := newTestServer(t)

	postConversation(t, srv, `{"message": "Climate change is real and urgent"}`)
	postConversation(t, srv, `{"message": "Vaccines saved millions of lives"}`)

	resp, err := http.Get(srv.URL + "/conversations")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Conversations []struct {
			ID           string `json:"id"`
			MessageCount int    `json:"message_count"`
		} `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Conversations) != 2 {
		t.Errorf("wrong conversation count: %d", len(body.Conversations))
	}
	for _, c := range body.Conversations {
		if c.MessageCount != 2 {
			t.Errorf("wrong message count for %s: %d", c.ID, c.MessageCount)
		}
	}
}

func TestDeleteConversation(t *testing.T) {
	srv := newTestServer(t)

	_, created := postConversation(t, srv, `{"message": "Darwin was wrong about species"}`)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/conversation/"+created.ConversationID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("wrong status: got %d, want 204", resp.StatusCode)
	}

	check, err := http.Get(srv.URL + "/conversation/" + created.ConversationID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	check.Body.Close()
	if check.StatusCode != http.StatusNotFound {
		t.Errorf("conversation still retrievable after delete: %d", check.StatusCode)
	}
}

func TestExportConversation(t *testing.T) {
	srv := newTestServer(t)

	_, created := postConversation(t, srv, `{"message": "Climate change is a hoax"}`)

	t.Run("Markdown", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/conversation/" + created.ConversationID + "/export/markdown")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("wrong status: got %d, want 200", resp.StatusCode)
		}
		if !strings.Contains(resp.Header.Get("Content-Disposition"), "attachment") {
			t.Error("missing attachment disposition")
		}

		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if !strings.Contains(buf.String(), "Climate change is a hoax") {
			t.Error("export missing user message")
		}
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/conversation/" + created.ConversationID + "/export/docx")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("wrong status: got %d, want 400", resp.StatusCode)
		}
	})

	t.Run("UnknownConversation", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/conversation/missing/export/markdown")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("wrong status: got %d, want 404", resp.StatusCode)
		}
	})
}

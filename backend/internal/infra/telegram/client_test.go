package telegram_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shiftcash-bot/backend/internal/infra/telegram"
)

func TestGetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/bottest-token/getUpdates" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request payload: %v", err)
		}
		if payload["offset"] != float64(42) {
			t.Fatalf("expected offset 42, got %v", payload["offset"])
		}
		if payload["timeout"] != float64(30) {
			t.Fatalf("expected timeout 30, got %v", payload["timeout"])
		}

		response := map[string]any{
			"ok": true,
			"result": []any{
				map[string]any{
					"update_id": 42,
					"message": map[string]any{
						"message_id": 7,
						"from":       map[string]any{"id": 1001, "username": "cashier"},
						"chat":       map[string]any{"id": 1001},
						"text":       "/cash 100",
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := telegram.NewClient("test-token", telegram.WithBaseURL(server.URL))
	updates, err := client.GetUpdates(context.Background(), 42, 30)
	if err != nil {
		t.Fatalf("GetUpdates returned error: %v", err)
	}

	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	u := updates[0]
	if u.UpdateID != 42 {
		t.Fatalf("update_id = %d, want 42", u.UpdateID)
	}
	if u.Message == nil || u.Message.From == nil {
		t.Fatalf("message/from must be populated")
	}
	if u.Message.From.ID != 1001 || u.Message.Text != "/cash 100" {
		t.Fatalf("unexpected message: %+v", u.Message)
	}
}

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request payload: %v", err)
		}
		if payload["chat_id"] != float64(555) {
			t.Fatalf("expected chat_id 555, got %v", payload["chat_id"])
		}
		if payload["text"] != "hello" {
			t.Fatalf("expected text hello, got %v", payload["text"])
		}
		if payload["parse_mode"] != "HTML" {
			t.Fatalf("expected parse_mode HTML, got %v", payload["parse_mode"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 1}})
	}))
	defer server.Close()

	client := telegram.NewClient("test-token", telegram.WithBaseURL(server.URL))
	if err := client.SendMessage(context.Background(), 555, "hello"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
}

func TestSendMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  403,
			"description": "Forbidden: bot was blocked by the user",
		})
	}))
	defer server.Close()

	client := telegram.NewClient("test-token", telegram.WithBaseURL(server.URL))
	err := client.SendMessage(context.Background(), 555, "hello")
	if err == nil {
		t.Fatalf("expected error")
	}

	var apiErr *telegram.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 403 {
		t.Fatalf("error code = %d, want 403", apiErr.Code)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("status code = %d, want 403", apiErr.StatusCode)
	}
}

func TestNewClient_EmptyToken(t *testing.T) {
	client := telegram.NewClient("   ")
	if err := client.SendMessage(context.Background(), 1, "x"); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
